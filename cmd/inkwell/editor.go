package main

import (
	"context"
	"fmt"

	"github.com/dshills/inkwell/internal/commands"
	"github.com/dshills/inkwell/internal/config"
	"github.com/dshills/inkwell/internal/history"
	"github.com/dshills/inkwell/internal/logging"
	"github.com/dshills/inkwell/internal/menu"
	"github.com/dshills/inkwell/internal/plugin/lua"
	"github.com/dshills/inkwell/internal/plugins/charcount"
	"github.com/dshills/inkwell/internal/plugins/draghandle"
	"github.com/dshills/inkwell/internal/plugins/imageinput"
	"github.com/dshills/inkwell/internal/plugins/inputrules"
	"github.com/dshills/inkwell/internal/plugins/placeholder"
	"github.com/dshills/inkwell/internal/plugins/selectionmenu"
	"github.com/dshills/inkwell/internal/plugins/trailingnode"
	"github.com/dshills/inkwell/internal/state"
	"github.com/dshills/inkwell/internal/upload"
)

// newUploader builds the configured upload backend. It returns nil when
// uploads are disabled.
func newUploader(ctx context.Context, uc config.UploadConfig, log *logging.Logger) (upload.Uploader, error) {
	switch uc.Backend {
	case config.BackendLocal:
		return upload.NewLocalUploader(uc.Dir, uc.BaseURL, log)
	case config.BackendMinio:
		m := uc.Minio
		return upload.NewMinioUploader(ctx, upload.MinioConfig{
			Endpoint:        m.Endpoint,
			AccessKeyID:     m.AccessKeyID,
			SecretAccessKey: m.SecretAccessKey,
			UseSSL:          m.UseSSL,
			Bucket:          m.Bucket,
			Prefix:          m.Prefix,
			PublicURL:       m.PublicURL,
		}, upload.WithTries(m.Tries), upload.WithMinioLogger(log))
	}
	return nil, nil
}

// editorSetup is the plugin list for an editing session and the resources
// it holds.
type editorSetup struct {
	plugins []state.Plugin
	scripts *lua.State
	bridge  *menu.Bridge
}

// Close releases the script runtime.
func (e *editorSetup) Close() error {
	if e.scripts == nil {
		return nil
	}
	return e.scripts.Close()
}

// newEditorSetup builds the plugins ec enables, in pipeline order. up may
// be nil, which leaves pasted files to the default handling.
func newEditorSetup(ec config.EditorConfig, up upload.Uploader, uploadOpts []upload.PluginOption, log *logging.Logger) (*editorSetup, error) {
	e := &editorSetup{bridge: menu.NewBridge(menu.DefaultItems()...)}
	e.plugins = append(e.plugins,
		history.New(history.WithLogger(log)),
		history.Keymap(),
		commands.Keymap(),
	)

	var rules []inputrules.Rule
	if ec.InputRules {
		rules = append(rules, inputrules.Markdown()...)
	}
	if len(ec.Scripts) > 0 {
		e.scripts = lua.NewState(lua.WithExecutionTimeout(ec.ScriptTimeout.Std()), lua.WithLogger(log))
		rs := lua.NewRuleSet(e.scripts)
		for _, path := range ec.Scripts {
			if err := rs.LoadFile(path); err != nil {
				e.Close()
				return nil, fmt.Errorf("script %s: %w", path, err)
			}
		}
		rules = append(rules, rs.Rules()...)
		log.Info("loaded %d scripted input rules", rs.Len())
	}
	if len(rules) > 0 {
		e.plugins = append(e.plugins, inputrules.New(rules...))
	}

	if ec.ImageInput {
		e.plugins = append(e.plugins, imageinput.New())
	}
	if up != nil {
		e.plugins = append(e.plugins, upload.NewPlugin(up, append([]upload.PluginOption{upload.WithLogger(log)}, uploadOpts...)...))
	}
	if ec.DragHandles {
		e.plugins = append(e.plugins, draghandle.New())
	}
	if ec.TrailingNode {
		e.plugins = append(e.plugins, trailingnode.New())
	}
	var countOpts []charcount.Option
	if ec.CharLimit > 0 {
		countOpts = append(countOpts, charcount.WithLimit(ec.CharLimit))
	}
	e.plugins = append(e.plugins,
		charcount.New(countOpts...),
		placeholder.New(ec.Placeholder),
		selectionmenu.New(e.bridge),
	)
	return e, nil
}

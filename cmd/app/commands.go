package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/starford/localref/internal"
	"github.com/starford/localref/internal/attach"
	"github.com/starford/localref/internal/editor"
	"github.com/starford/localref/internal/index"
	"github.com/starford/localref/internal/models"
	"github.com/starford/localref/internal/notify"
	"github.com/starford/localref/internal/picker"
	"github.com/starford/localref/internal/refparse"
)

// open loads the components for a one-shot command. Notices are printed to
// stderr so stdout carries only command output.
func open(cmd *cli.Command, withNotices bool) (*internal.Components, error) {
	opts, err := baseOptions(cmd)
	if err != nil {
		return nil, err
	}
	if withNotices {
		opts = append(opts, internal.WithNotifier(notify.NewWriter(os.Stderr)))
	}
	return internal.OpenComponents(opts...)
}

func insertCommand() *cli.Command {
	return &cli.Command{
		Name:      "insert",
		Usage:     "Copy a local file into the vault and insert a reference into a document",
		ArgsUsage: "[file]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "document",
				Aliases:  []string{"d"},
				Usage:    "Vault-relative path of the document to edit",
				Required: true,
			},
			&cli.IntFlag{
				Name:  "at",
				Usage: "Byte offset to insert at (default: end of document)",
				Value: -1,
			},
			&cli.BoolFlag{
				Name:  "print",
				Usage: "Print the reference instead of editing the document",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			comps, err := open(cmd, true)
			if err != nil {
				return err
			}
			defer comps.Close()

			document := cmd.String("document")
			var p picker.Picker = picker.Prompt{
				In:         os.Stdin,
				Out:        os.Stderr,
				DefaultDir: comps.DefaultDir(),
				Logger:     comps.Logger,
			}
			if cmd.Args().Present() {
				p = picker.Static{Paths: cmd.Args().Slice(), DefaultDir: comps.DefaultDir()}
			}

			var sink editor.Sink = &editor.Capture{}
			if !cmd.Bool("print") {
				sel := editor.EndOfDocument
				if at := int(cmd.Int("at")); at >= 0 {
					sel = editor.Cursor(at)
				}
				sink = &editor.Document{Store: comps.Store, Path: document, Selection: sel}
			}

			res, err := comps.Service.Insert(ctx, p, document, sink)
			if err != nil {
				// Already reported as a notice.
				return cli.Exit("", 1)
			}
			if res != nil {
				fmt.Fprintln(os.Stdout, res.Reference)
			}
			return nil
		},
	}
}

func classifyCommand() *cli.Command {
	return &cli.Command{
		Name:      "classify",
		Usage:     "Report whether files would be embedded or linked",
		ArgsUsage: "name...",
		Action: func(_ context.Context, cmd *cli.Command) error {
			if !cmd.Args().Present() {
				return errors.New("classify: at least one file name is required")
			}
			for _, name := range cmd.Args().Slice() {
				fmt.Fprintf(os.Stdout, "%s\t%s\n", name, attach.Classify(models.NewSourceFile(name).Ext))
			}
			return nil
		},
	}
}

func refsCommand() *cli.Command {
	return &cli.Command{
		Name:      "refs",
		Usage:     "List the references of a vault document and which ones are missing",
		ArgsUsage: "document",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "Print the report as JSON"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return errors.New("refs: exactly one document is required")
			}
			comps, err := open(cmd, false)
			if err != nil {
				return err
			}
			defer comps.Close()

			rep, err := refparse.Scan(ctx, comps.Store, cmd.Args().First())
			if err != nil {
				return fmt.Errorf("refs: %w", err)
			}
			if cmd.Bool("json") {
				return writeJSON(os.Stdout, rep)
			}
			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "LINE\tKIND\tTARGET\tCLASS\tRESOLVED")
			for _, ref := range rep.References {
				resolved := ref.Resolved
				if resolved == "" && !ref.External {
					resolved = "(missing)"
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", ref.Line, ref.Kind, ref.Target, ref.Class, resolved)
			}
			return tw.Flush()
		},
	}
}

func historyCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List recorded insertions, newest first",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "document", Aliases: []string{"d"}, Usage: "Only insertions into this document"},
			&cli.IntFlag{Name: "limit", Usage: "Maximum rows", Value: 20},
			&cli.BoolFlag{Name: "json", Usage: "Print as JSON"},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			comps, err := open(cmd, false)
			if err != nil {
				return err
			}
			defer comps.Close()

			items, total, err := comps.History.ListInsertions(int(cmd.Int("limit")), 0, cmd.String("document"))
			if err != nil {
				return fmt.Errorf("history: %w", err)
			}
			if cmd.Bool("json") {
				return writeJSON(os.Stdout, map[string]any{"items": items, "total": total})
			}
			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tWHEN\tDOCUMENT\tREFERENCE\tSOURCE")
			for _, in := range items {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
					in.ID, in.CreatedAt.Local().Format("2006-01-02 15:04"), in.Document, in.Reference, in.Source)
			}
			return tw.Flush()
		},
	}
}

func pruneCommand() *cli.Command {
	return &cli.Command{
		Name:  "prune",
		Usage: "Forget history rows whose vault copies no longer exist",
		Action: func(_ context.Context, cmd *cli.Command) error {
			comps, err := open(cmd, false)
			if err != nil {
				return err
			}
			defer comps.Close()

			n, err := index.Prune(comps.History, comps.Store, comps.Logger)
			if err != nil {
				return fmt.Errorf("prune: %w", err)
			}
			fmt.Fprintf(os.Stdout, "removed %d\n", n)
			return nil
		},
	}
}

func settingsCommand() *cli.Command {
	return &cli.Command{
		Name:  "settings",
		Usage: "Read or change user settings",
		Commands: []*cli.Command{
			{
				Name:      "get",
				ArgsUsage: "key",
				Action: func(_ context.Context, cmd *cli.Command) error {
					comps, err := open(cmd, false)
					if err != nil {
						return err
					}
					defer comps.Close()
					v, err := comps.Settings.Get(cmd.Args().First())
					if err != nil {
						return err
					}
					fmt.Fprintln(os.Stdout, v)
					return nil
				},
			},
			{
				Name:      "set",
				ArgsUsage: "key value",
				Action: func(_ context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() != 2 {
						return errors.New("settings set: key and value are required")
					}
					comps, err := open(cmd, false)
					if err != nil {
						return err
					}
					defer comps.Close()
					return comps.Settings.Set(cmd.Args().Get(0), cmd.Args().Get(1))
				},
			},
			{
				Name:  "path",
				Usage: "Print the settings file location",
				Action: func(_ context.Context, cmd *cli.Command) error {
					comps, err := open(cmd, false)
					if err != nil {
						return err
					}
					defer comps.Close()
					fmt.Fprintln(os.Stdout, comps.Settings.Path())
					return nil
				},
			},
		},
	}
}

func watch(ctx context.Context, cmd *cli.Command) error {
	opts, err := baseOptions(cmd)
	if err != nil {
		return err
	}
	return internal.RunWatch(ctx, append(opts, internal.WithNotifier(notify.NewWriter(os.Stderr)))...)
}

func mcp(ctx context.Context, cmd *cli.Command) error {
	opts, err := baseOptions(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx, opts...)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

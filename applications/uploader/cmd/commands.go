package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"

	"github.com/donmikel/sheetdrop/applications/uploader"
	"github.com/donmikel/sheetdrop/applications/uploader/adapters/excel"
	"github.com/donmikel/sheetdrop/applications/uploader/adapters/presigned"
	"github.com/donmikel/sheetdrop/applications/uploader/config"
	"github.com/donmikel/sheetdrop/applications/uploader/domain"
	"github.com/donmikel/sheetdrop/applications/uploader/services"
	"github.com/donmikel/sheetdrop/applications/uploader/telemetry"
)

func workflowsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "workflows",
		Short: "List the configured workflows and their slots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, w := range cfg.Workflows {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", w.Name, w.Title, w.Description)
				for i, s := range w.Slots {
					target := s.TargetName
					if target == "" {
						target = "{name}"
					}
					fmt.Fprintf(tw, "  %d. %s\t%s\t%s\n", i+1, s.ID, s.Label, target)
				}
				if w.Sync != nil {
					fmt.Fprintf(tw, "  sync\t%s\t%s\n", w.Sync.Label, w.Sync.URL)
				}
			}

			return tw.Flush()
		},
	}
}

type slotFile struct {
	slot string
	path string
}

func parseSlotFiles(values []string) ([]slotFile, error) {
	files := make([]slotFile, 0, len(values))
	for _, v := range values {
		slot, path, ok := strings.Cut(v, "=")
		if !ok || slot == "" || path == "" {
			return nil, fmt.Errorf("--file %q: want <slot>=<path>", v)
		}
		files = append(files, slotFile{slot: slot, path: path})
	}

	return files, nil
}

func uploadCmd(opts *options) *cobra.Command {
	var (
		files []string
		sync  bool
	)

	cmd := &cobra.Command{
		Use:   "upload <workflow>",
		Short: "Validate and upload files slot by slot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			w, err := opts.workflow(cfg, args[0])
			if err != nil {
				return err
			}
			selected, err := parseSlotFiles(files)
			if err != nil {
				return err
			}
			if len(selected) == 0 {
				return errors.New("no --file given")
			}
			if sync && w.Sync == nil {
				return fmt.Errorf("workflow %q has no sync step", w.Name)
			}

			view := newProgressView(cmd.ErrOrStderr(), opts.logger)
			client := newClient(cfg, w, opts)
			page, err := services.NewPage(w, services.Dependencies{
				Uploader: client,
				Sheets:   excel.NewSheetReader(),
				Sync:     client,
				Fillers:  telemetry.NewFillers(cfg.Fillers.Messages, cfg.Fillers.Interval),
				Logger:   opts.logger,
			},
				services.WithProgressObserver(view.onProgress),
				services.WithFillerObserver(view.onFiller),
			)
			if err != nil {
				return err
			}

			return runActors(cmd.Context(), opts.logger, func(ctx context.Context) error {
				return uploadAll(ctx, cmd, page, selected, sync)
			})
		},
	}
	cmd.Flags().StringArrayVarP(&files, "file", "f", nil, "<slot>=<path>, repeat in slot order")
	cmd.Flags().BoolVar(&sync, "sync", false, "trigger the sync step after all slots completed")

	return cmd
}

func uploadAll(ctx context.Context, cmd *cobra.Command, page uploader.UploadPage, selected []slotFile, sync bool) error {
	out := cmd.OutOrStdout()

	for _, sf := range selected {
		file, err := domain.NewLocalFile(sf.path)
		if err != nil {
			return err
		}

		if res := page.Choose(sf.slot, file); !res.IsAccepted() {
			return fmt.Errorf("%s: %s", sf.slot, res.Reason())
		}

		fmt.Fprintf(out, "uploading %s (%s) to slot %s\n", file.Name(), humanize.IBytes(uint64(file.Size())), sf.slot)

		err = page.Upload(ctx, sf.slot)
		if err = showBanner(out, page.Banner(), err); err != nil {
			return err
		}
	}

	if !sync {
		return nil
	}

	err := page.TriggerSync(ctx)

	return showBanner(out, page.Banner(), err)
}

// showBanner prints the success banner of a finished step. A failed step
// returns the banner's error text so the user sees the page's wording.
func showBanner(out io.Writer, b domain.Banner, err error) error {
	if err != nil {
		if b.Error != "" {
			return errors.New(b.Error)
		}
		return err
	}
	if b.Empty() {
		return nil
	}

	_, err = fmt.Fprint(out, ensureNewline(b.Success))

	return err
}

func syncCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "sync <workflow>",
		Short: "Trigger the sync step for files uploaded earlier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			w, err := opts.workflow(cfg, args[0])
			if err != nil {
				return err
			}
			if w.Sync == nil {
				return fmt.Errorf("workflow %q has no sync step", w.Name)
			}

			client := newClient(cfg, w, opts)

			return runActors(cmd.Context(), opts.logger, func(ctx context.Context) error {
				if err := client.TriggerSync(ctx, w.Sync.URL); err != nil {
					level.Error(opts.logger).Log("msg", "sync failed", "err", err)
					return err
				}

				msg := w.Sync.SuccessMessage
				if msg == "" {
					msg = "Sync triggered successfully!"
				}
				fmt.Fprintln(cmd.OutOrStdout(), msg)

				return nil
			})
		},
	}
}

func newClient(cfg config.Uploader, w config.Workflow, opts *options) *presigned.Client {
	return presigned.New(cfg.IssuerURLFor(w), opts.logger,
		presigned.WithFileType(cfg.SendFileTypeFor(w)),
		presigned.WithHTTPClient(&http.Client{Timeout: cfg.Issuer.Timeout}),
	)
}

func ensureNewline(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}

	return s + "\n"
}


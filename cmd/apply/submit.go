package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"kqs-apply/config"
	"kqs-apply/internal/domain"
	"kqs-apply/internal/repository/httpapi"
	"kqs-apply/internal/repository/mail"
	"kqs-apply/internal/repository/simulated"
	"kqs-apply/internal/usecase"
	"kqs-apply/pkg/clock"
	"kqs-apply/pkg/email"
	"kqs-apply/pkg/logger"
	"kqs-apply/pkg/metrics"
	"kqs-apply/pkg/security"

	"github.com/spf13/cobra"
)

type submitOptions struct {
	position  string
	name      string
	email     string
	message   string
	cvPath    string
	requireCV bool
}

func newSubmitCmd(app *cli) *cobra.Command {
	opts := &submitOptions{}

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit an application",
		Long: `Fill in the application form and submit it.

Field errors and submission failures are printed and exit with status 1.
After a successful submission the command waits for the dialog to close
itself (AUTO_CLOSE_DELAY_MS) before exiting.`,
		Example: `  apply submit --position "Data Scientist" --name "Ada Lovelace" --email ada@example.com --cv ./cv.pdf`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubmit(cmd, app, opts)
		},
	}

	cmd.Flags().StringVar(&opts.position, "position", "", "Position title (empty for a general application)")
	cmd.Flags().StringVar(&opts.name, "name", "", "Full name")
	cmd.Flags().StringVar(&opts.email, "email", "", "Email address")
	cmd.Flags().StringVar(&opts.message, "message", "", "Optional cover message")
	cmd.Flags().StringVar(&opts.cvPath, "cv", "", "Path to a PDF or Word CV")
	cmd.Flags().BoolVar(&opts.requireCV, "require-cv", false, "Reject the application without a CV (default from REQUIRE_CV)")
	return cmd
}

func runSubmit(cmd *cobra.Command, app *cli, opts *submitOptions) error {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// 2. Setup Logger
	logger.Init(cfg.LogLevel)

	requireCV := cfg.RequireCV
	if cmd.Flags().Changed("require-cv") {
		requireCV = opts.requireCV
	}

	// 3. Wire the controller
	var closeOnce sync.Once
	closed := make(chan struct{})
	settled := make(chan domain.FormState, 1)

	ctl := usecase.NewApplicationFormController(
		newSubmitter(cfg),
		func() { closeOnce.Do(func() { close(closed) }) },
		usecase.WithAutoCloseDelay(cfg.AutoCloseDelay),
		usecase.WithAttachmentRequired(requireCV),
		usecase.WithObserver(metrics.NewFormMetrics(app.registry)),
		usecase.WithStateListener(func(from, to domain.FormState) {
			if from == domain.StateSubmitting {
				select {
				case settled <- to:
				default:
				}
			}
		}),
	)
	defer ctl.Dispose()

	out := cmd.OutOrStdout()
	title := resolvePosition(opts.position)
	if err := ctl.Open(title); err != nil {
		return err
	}
	fmt.Fprintln(out, domain.DialogTitle(title))
	fmt.Fprintln(out, domain.DialogDescription(title))

	// 4. Fill in the form
	for _, f := range []struct {
		field domain.Field
		value string
	}{
		{domain.FieldName, opts.name},
		{domain.FieldEmail, opts.email},
		{domain.FieldMessage, opts.message},
	} {
		if err := ctl.SetField(f.field, f.value); err != nil {
			return err
		}
	}

	if opts.cvPath != "" {
		attachment, err := loadAttachment(opts.cvPath)
		if err != nil {
			return err
		}
		if err := ctl.SelectAttachment(attachment); err != nil {
			return err
		}
	}

	// 5. Submit and wait for the outcome
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := ctl.Submit(ctx); err != nil {
		if errors.Is(err, domain.ErrValidationFailed) {
			printFieldErrors(out, ctl.Snapshot().Errors)
			return errNotSubmitted
		}
		return err
	}

	var state domain.FormState
	select {
	case state = <-settled:
	case <-ctx.Done():
		ctl.Close()
		return ctx.Err()
	}

	snap := ctl.Snapshot()
	if state != domain.StateSubmitted {
		fmt.Fprintln(out, snap.SubmitError)
		return errNotSubmitted
	}

	fmt.Fprintln(out, domain.SuccessMessage)
	if snap.Receipt != nil && snap.Receipt.ReferenceID != "" {
		fmt.Fprintf(out, "Reference: %s\n", snap.Receipt.ReferenceID)
	}

	waitForClose(ctx, closed)
	ctl.Close()
	return nil
}

// newSubmitter builds the collaborator selected by SUBMIT_TRANSPORT
func newSubmitter(cfg *config.Config) domain.ApplicationSubmitter {
	switch cfg.SubmitTransport {
	case config.TransportHTTP:
		return httpapi.NewApplicationSubmitter(httpapi.Config{
			Endpoint:           cfg.SubmitEndpoint,
			Timeout:            cfg.SubmitTimeout,
			RatePerMinute:      cfg.SubmitRatePerMinute,
			BreakerMaxFailures: cfg.BreakerMaxFailures,
			BreakerOpenTimeout: cfg.BreakerOpenTimeout,
		}, nil)
	case config.TransportSMTP:
		emailService := email.NewEmailService(cfg)
		if !emailService.IsConfigured() {
			logger.Log.Warn("Email service not fully configured - submissions will be unavailable")
		}
		return mail.NewApplicationSubmitter(emailService)
	default:
		return simulated.NewApplicationSubmitter(cfg.SimulatedLatency, clock.Real{})
	}
}

// resolvePosition returns the catalogue title for position, or position as given
func resolvePosition(position string) string {
	position = strings.TrimSpace(position)
	if position == "" {
		return ""
	}
	if p, ok := domain.FindPosition(position); ok {
		return p.Title
	}
	logger.Log.Warn("Position is not in the catalogue", "position", position)
	return position
}

// loadAttachment reads a CV from disk. The content type comes from the
// extension and magic bytes; the form rules decide whether it is accepted.
func loadAttachment(path string) (domain.Attachment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Attachment{}, fmt.Errorf("failed to read CV: %w", err)
	}

	filename := filepath.Base(path)
	result := security.InspectDocument(filename, data)
	if !result.Valid {
		logger.Log.Warn("CV failed inspection", "file", filename, "reason", result.Error, "detected_mime", result.DetectedMIME)
	}

	return domain.Attachment{
		Filename:    filename,
		ContentType: result.DetectedMIME,
		Size:        int64(len(data)),
		Data:        data,
	}, nil
}

func printFieldErrors(w io.Writer, errs domain.ValidationErrors) {
	fmt.Fprintln(w, "Please fix the following:")
	for _, field := range errs.Fields() {
		fmt.Fprintf(w, "  - %s\n", errs[domain.Field(field)])
	}
}

func waitForClose(ctx context.Context, closed <-chan struct{}) {
	select {
	case <-closed:
	case <-ctx.Done():
	}
}

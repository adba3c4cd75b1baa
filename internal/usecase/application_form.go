package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"kqs-apply/internal/domain"
	"kqs-apply/pkg/apperror"
	"kqs-apply/pkg/clock"
	"kqs-apply/pkg/logger"
)

// GenericSubmitError is shown when a collaborator fails without an applicant-facing message
const GenericSubmitError = "We couldn't submit your application. Please try again."

// DefaultAutoCloseDelay is how long the success message stays up before onClose fires
const DefaultAutoCloseDelay = 3 * time.Second

// Submission outcomes reported to a FormObserver
const (
	OutcomeSuccess   = "success"
	OutcomeFailure   = "failure"
	OutcomeAbandoned = "abandoned"
)

// FormObserver receives validation and submission events, e.g. for metrics
type FormObserver interface {
	ValidationFailed(fields []string)
	SubmissionFinished(outcome string, elapsed time.Duration)
}

// Option configures an ApplicationFormController
type Option func(*ApplicationFormController)

// WithClock replaces the wall clock used for timers
func WithClock(c clock.Clock) Option {
	return func(ctl *ApplicationFormController) { ctl.clock = c }
}

func WithAutoCloseDelay(d time.Duration) Option {
	return func(ctl *ApplicationFormController) { ctl.autoCloseDelay = d }
}

// WithAttachmentRequired selects the CV-bearing variant of the form
func WithAttachmentRequired(required bool) Option {
	return func(ctl *ApplicationFormController) { ctl.attachmentRequired = required }
}

func WithObserver(o FormObserver) Option {
	return func(ctl *ApplicationFormController) { ctl.observer = o }
}

// WithStateListener registers fn to be called after every state transition.
// It is never called while the controller's lock is held.
func WithStateListener(fn func(from, to domain.FormState)) Option {
	return func(ctl *ApplicationFormController) { ctl.onStateChange = fn }
}

// ApplicationFormController owns the fields, errors and submission lifecycle
// of one application dialog.
//
// Every open session carries an epoch. Timers and collaborator completions
// capture the epoch they were started under and are dropped when it no longer
// matches, so nothing mutates the form after the dialog is closed or disposed.
type ApplicationFormController struct {
	submitter          domain.ApplicationSubmitter
	onClose            func()
	clock              clock.Clock
	autoCloseDelay     time.Duration
	attachmentRequired bool
	observer           FormObserver
	onStateChange      func(from, to domain.FormState)

	mu        sync.Mutex
	open      bool
	disposed  bool
	epoch     uint64
	jobTitle  string
	state     domain.FormState
	form      domain.ApplicationForm
	errors    domain.ValidationErrors
	submitErr string
	receipt   *domain.SubmissionReceipt
	autoClose clock.Timer
	inFlight  bool
	startedAt time.Time
	pending   []func() // callbacks to run once mu is released
}

// NewApplicationFormController creates a closed dialog. onClose is invoked when the
// applicant dismisses the dialog and after the post-success delay.
func NewApplicationFormController(submitter domain.ApplicationSubmitter, onClose func(), opts ...Option) *ApplicationFormController {
	c := &ApplicationFormController{
		submitter:      submitter,
		onClose:        onClose,
		clock:          clock.Real{},
		autoCloseDelay: DefaultAutoCloseDelay,
		state:          domain.StateEditing,
		form:           domain.NewApplicationForm(""),
		errors:         domain.ValidationErrors{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Open shows the dialog with a fresh form whose subject is jobTitle.
// Opening an already open dialog re-seeds it the same way.
func (c *ApplicationFormController) Open(jobTitle string) error {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return domain.ErrDisposed
	}
	c.resetLocked(jobTitle)
	c.open = true
	c.unlockAndNotify()

	logger.Log.Debug("Application dialog opened", "job_title", jobTitle)
	return nil
}

// Close hides the dialog and discards the form. Pending timers are cancelled
// and an in-flight submission is abandoned. onClose is not invoked.
func (c *ApplicationFormController) Close() {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	c.resetLocked(c.jobTitle)
	c.open = false
	c.unlockAndNotify()
}

// Dismiss is the applicant closing the dialog: Close followed by onClose.
func (c *ApplicationFormController) Dismiss() error {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return domain.ErrDisposed
	}
	if !c.open {
		c.mu.Unlock()
		return domain.ErrDialogClosed
	}
	c.resetLocked(c.jobTitle)
	c.open = false
	if c.onClose != nil {
		c.pending = append(c.pending, c.onClose)
	}
	c.unlockAndNotify()
	return nil
}

// Dispose tears the controller down. Every later mutating call returns ErrDisposed.
func (c *ApplicationFormController) Dispose() {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	c.resetLocked("")
	c.open = false
	c.disposed = true
	c.unlockAndNotify()
}

// SetField changes one text field and clears that field's error only.
func (c *ApplicationFormController) SetField(field domain.Field, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.editableLocked(); err != nil {
		return err
	}

	switch field {
	case domain.FieldName:
		c.form.Name = value
	case domain.FieldEmail:
		c.form.Email = value
	case domain.FieldMessage:
		c.form.Message = value
	case domain.FieldSubject:
		return fmt.Errorf("%w: %s", domain.ErrReadOnlyField, field)
	default:
		return fmt.Errorf("%w: %q", domain.ErrUnknownField, field)
	}

	delete(c.errors, field)
	return nil
}

// SelectAttachment sets the CV and clears its error.
func (c *ApplicationFormController) SelectAttachment(a domain.Attachment) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.editableLocked(); err != nil {
		return err
	}
	if a.Size == 0 && len(a.Data) > 0 {
		a.Size = int64(len(a.Data))
	}
	c.form.Attachment = &a
	delete(c.errors, domain.FieldAttachment)
	return nil
}

// RemoveAttachment clears the CV without touching errors or re-validating.
func (c *ApplicationFormController) RemoveAttachment() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.editableLocked(); err != nil {
		return err
	}
	c.form.Attachment = nil
	return nil
}

// Validate replaces the error set with a full validation of the current values.
func (c *ApplicationFormController) Validate() domain.ValidationErrors {
	c.mu.Lock()
	defer c.mu.Unlock()

	errs := ValidateApplication(c.form, c.attachmentRequired)
	if !c.disposed {
		c.errors = errs
	}
	return errs.Clone()
}

// CanSubmit reports whether Submit would start a submission right now.
// It uses the same validation as Submit.
func (c *ApplicationFormController) CanSubmit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canSubmitLocked()
}

// Submit validates the form and, when it is valid, hands it to the
// collaborator asynchronously. Invalid forms stay in Editing with the full
// error set and ErrValidationFailed is returned; the collaborator is not called.
//
// ctx bounds the collaborator call. Closing the dialog does not cancel it,
// the result is simply ignored.
func (c *ApplicationFormController) Submit(ctx context.Context) error {
	c.mu.Lock()
	if err := c.editableLocked(); err != nil {
		c.mu.Unlock()
		return err
	}

	// A new attempt replaces the outcome of the previous one
	c.submitErr = ""
	errs := ValidateApplication(c.form, c.attachmentRequired)
	c.errors = errs
	if len(errs) > 0 {
		if c.observer != nil {
			obs, fields := c.observer, errs.Fields()
			c.pending = append(c.pending, func() { obs.ValidationFailed(fields) })
		}
		c.unlockAndNotify()
		logger.Log.Debug("Application rejected by validation", "fields", errs.Fields())
		return domain.ErrValidationFailed
	}

	c.setStateLocked(domain.StateSubmitting)
	c.inFlight = true
	c.startedAt = c.clock.Now()
	epoch := c.epoch
	form := c.form.Clone()
	c.unlockAndNotify()

	go c.runSubmission(ctx, epoch, form)
	return nil
}

// Snapshot returns a copy of the dialog state
func (c *ApplicationFormController) Snapshot() domain.FormSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := domain.FormSnapshot{
		Open:        c.open,
		State:       c.state,
		Form:        c.form.Clone(),
		Errors:      c.errors.Clone(),
		SubmitError: c.submitErr,
		CanSubmit:   c.canSubmitLocked(),
	}
	if c.receipt != nil {
		r := *c.receipt
		snap.Receipt = &r
	}
	return snap
}

func (c *ApplicationFormController) runSubmission(ctx context.Context, epoch uint64, form domain.ApplicationForm) {
	receipt, err := c.submitter.SubmitApplication(ctx, form)
	c.finishSubmission(epoch, receipt, err)
}

func (c *ApplicationFormController) finishSubmission(epoch uint64, receipt *domain.SubmissionReceipt, err error) {
	c.mu.Lock()
	if c.disposed || epoch != c.epoch || !c.inFlight {
		c.mu.Unlock()
		return
	}

	c.inFlight = false
	elapsed := c.clock.Now().Sub(c.startedAt)

	if err != nil {
		c.submitErr = apperror.UserMessage(err, GenericSubmitError)
		subject := c.form.Subject
		c.setStateLocked(domain.StateEditing)
		c.observeLocked(OutcomeFailure, elapsed)
		c.unlockAndNotify()

		logger.Log.Warn("Application submission failed", "subject", subject, "error", err)
		return
	}

	if receipt == nil {
		receipt = &domain.SubmissionReceipt{}
	}
	c.receipt = receipt
	c.setStateLocked(domain.StateSubmitted)
	c.autoClose = c.clock.AfterFunc(c.autoCloseDelay, func() { c.fireAutoClose(epoch) })
	c.observeLocked(OutcomeSuccess, elapsed)
	c.unlockAndNotify()

	logger.Log.Info("Application submitted", "reference_id", receipt.ReferenceID, "elapsed", elapsed)
}

func (c *ApplicationFormController) fireAutoClose(epoch uint64) {
	c.mu.Lock()
	if c.disposed || epoch != c.epoch || c.state != domain.StateSubmitted || c.autoClose == nil {
		c.mu.Unlock()
		return
	}
	c.autoClose = nil
	if c.onClose != nil {
		c.pending = append(c.pending, c.onClose)
	}
	c.unlockAndNotify()
}

// resetLocked starts a new session: timers stop, in-flight work is abandoned
// and the form returns to its defaults.
func (c *ApplicationFormController) resetLocked(jobTitle string) {
	if c.autoClose != nil {
		c.autoClose.Stop()
		c.autoClose = nil
	}
	if c.inFlight {
		c.inFlight = false
		c.observeLocked(OutcomeAbandoned, c.clock.Now().Sub(c.startedAt))
	}

	c.epoch++
	c.jobTitle = jobTitle
	c.form = domain.NewApplicationForm(jobTitle)
	c.errors = domain.ValidationErrors{}
	c.submitErr = ""
	c.receipt = nil
	c.setStateLocked(domain.StateEditing)
}

func (c *ApplicationFormController) editableLocked() error {
	switch {
	case c.disposed:
		return domain.ErrDisposed
	case !c.open:
		return domain.ErrDialogClosed
	case c.state != domain.StateEditing:
		return domain.ErrNotEditing
	}
	return nil
}

func (c *ApplicationFormController) canSubmitLocked() bool {
	if c.editableLocked() != nil {
		return false
	}
	return len(ValidateApplication(c.form, c.attachmentRequired)) == 0
}

func (c *ApplicationFormController) setStateLocked(to domain.FormState) {
	from := c.state
	if from == to {
		return
	}
	c.state = to
	if c.onStateChange != nil {
		fn := c.onStateChange
		c.pending = append(c.pending, func() { fn(from, to) })
	}
}

func (c *ApplicationFormController) observeLocked(outcome string, elapsed time.Duration) {
	if c.observer == nil {
		return
	}
	obs := c.observer
	c.pending = append(c.pending, func() { obs.SubmissionFinished(outcome, elapsed) })
}

// unlockAndNotify releases mu and then runs the callbacks queued while it was held.
func (c *ApplicationFormController) unlockAndNotify() {
	pending := c.pending
	c.pending = nil
	c.mu.Unlock()

	for _, fn := range pending {
		fn()
	}
}

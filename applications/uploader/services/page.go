package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/donmikel/sheetdrop/applications/uploader"
	"github.com/donmikel/sheetdrop/applications/uploader/config"
	"github.com/donmikel/sheetdrop/applications/uploader/domain"
	"github.com/donmikel/sheetdrop/applications/uploader/interfaces"
	"github.com/donmikel/sheetdrop/applications/uploader/telemetry"
	"github.com/donmikel/sheetdrop/applications/uploader/validation"
	"github.com/donmikel/sheetdrop/applications/uploader/workflow"
)

var (
	ErrNoSync     = errors.New("workflow has no sync step")
	ErrSyncLocked = errors.New("complete all uploads first")
)

const (
	msgSelectFirst     = "Please select a file first"
	defaultSyncLabel   = "Sync"
	defaultSyncSuccess = "Sync triggered successfully!"
)

type Dependencies struct {
	Uploader interfaces.Uploader
	Sheets   interfaces.SheetReader
	Sync     interfaces.SyncTrigger
	Fillers  *telemetry.Fillers
	Logger   log.Logger
	Now      func() time.Time
}

type Option func(*page)

// WithProgressObserver is called after every sample and once with zero stats
// when the transfer ends.
func WithProgressObserver(fn func(slot workflow.Slot, stats domain.TransferStats)) Option {
	return func(p *page) {
		p.onProgress = fn
	}
}

func WithFillerObserver(fn func(msg string)) Option {
	return func(p *page) {
		p.onFiller = fn
	}
}

type page struct {
	workflow config.Workflow
	rules    validation.Rules
	machine  *workflow.Machine
	deps     Dependencies
	logger   log.Logger

	onProgress func(slot workflow.Slot, stats domain.TransferStats)
	onFiller   func(msg string)

	mu        sync.Mutex
	banner    domain.Banner
	telemetry telemetry.Telemetry
	stats     domain.TransferStats
	uploading bool
	filler    string
	syncing   bool
}

func NewPage(w config.Workflow, deps Dependencies, opts ...Option) (uploader.UploadPage, error) {
	if deps.Uploader == nil {
		return nil, errors.New("page needs an uploader")
	}
	if len(w.RequiredTabs) > 0 && deps.Sheets == nil {
		return nil, fmt.Errorf("workflow %q checks tabs but has no sheet reader", w.Name)
	}
	if w.Sync != nil && deps.Sync == nil {
		return nil, fmt.Errorf("workflow %q has a sync step but no sync client", w.Name)
	}

	specs := make([]workflow.SlotSpec, 0, len(w.Slots))
	for _, s := range w.Slots {
		specs = append(specs, workflow.SlotSpec{ID: s.ID, Label: s.Label, TargetName: s.TargetName})
	}

	machine, err := workflow.New(specs)
	if err != nil {
		return nil, fmt.Errorf("can't build workflow %q: %w", w.Name, err)
	}

	if deps.Logger == nil {
		deps.Logger = log.NewNopLogger()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	p := &page{
		workflow: w,
		rules: validation.Rules{
			Extensions:    w.Accept.Extensions,
			MimeTypes:     w.Accept.MimeTypes,
			RejectMessage: w.Accept.RejectMessage,
		},
		machine: machine,
		deps:    deps,
		logger:  log.With(deps.Logger, "workflow", w.Name),
	}
	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

func (p *page) Workflow() config.Workflow {
	return p.workflow
}

func (p *page) Slots() []workflow.Slot {
	return p.machine.Slots()
}

func (p *page) Enabled(slotID string) bool {
	return p.machine.Enabled(slotID)
}

// Choose validates file and, when accepted, captures it in the slot. A
// rejected file is never kept.
func (p *page) Choose(slotID string, file domain.FileHandle) domain.ValidationResult {
	p.setBanner(domain.Banner{})

	pos, err := p.machine.Position(slotID)
	if err != nil {
		return p.reject(err.Error())
	}
	if !p.machine.Enabled(slotID) {
		return p.reject(fmt.Sprintf("Complete step %d first", pos))
	}

	res := p.rules.Validate(file)
	if !res.IsAccepted() {
		level.Info(p.logger).Log("msg", "file rejected",
			"slot", slotID,
			"reason", res.Reason(),
		)
		p.setBanner(domain.Banner{Error: res.Reason()})
		return res
	}

	if err = p.machine.Select(slotID, file); err != nil {
		return p.reject(err.Error())
	}

	level.Info(p.logger).Log("msg", "file selected",
		"slot", slotID,
		"file", file.Name(),
	)

	return res
}

func (p *page) reject(reason string) domain.ValidationResult {
	p.setBanner(domain.Banner{Error: reason})
	return domain.Rejected(reason)
}

// Upload confirms the slot. While another transfer runs it returns
// workflow.ErrBusy and changes nothing.
func (p *page) Upload(ctx context.Context, slotID string) error {
	if err := p.machine.Begin(slotID); err != nil {
		switch {
		case errors.Is(err, workflow.ErrBusy):
		case errors.Is(err, workflow.ErrNoFile):
			p.setBanner(domain.Banner{Error: msgSelectFirst})
		default:
			p.setBanner(domain.Banner{Error: err.Error()})
		}
		return err
	}

	slot, err := p.machine.Slot(slotID)
	if err != nil {
		return err
	}

	p.startTransfer()

	if len(p.workflow.RequiredTabs) > 0 {
		if err = p.checkTabs(ctx, slot.File); err != nil {
			level.Info(p.logger).Log("msg", "workbook rejected",
				"slot", slotID,
				"err", err,
			)
			_ = p.machine.Abandon(slotID)
			p.endTransfer(slot, domain.Banner{Error: err.Error()})
			return err
		}
	}

	target := TargetName(slot.TargetName, slot.File, p.deps.Now())

	if err = p.transfer(ctx, slot, target); err != nil {
		level.Error(p.logger).Log("msg", "upload failed",
			"slot", slotID,
			"target", target,
			"err", err,
		)
		_ = p.machine.Fail(slotID, err)
		p.endTransfer(slot, domain.Banner{Error: fmt.Sprintf("Upload failed for %s: %v", target, err)})
		return err
	}

	_ = p.machine.Complete(slotID)
	p.endTransfer(slot, p.successBanner(target+" uploaded successfully!"))

	return nil
}

func (p *page) checkTabs(ctx context.Context, file domain.FileHandle) error {
	names, err := p.deps.Sheets.SheetNames(ctx, file)
	if err != nil {
		return validation.UnreadableWorkbook(err)
	}

	return validation.CheckWorkbook(names, p.workflow.RequiredTabs)
}

func (p *page) transfer(ctx context.Context, slot workflow.Slot, target string) error {
	samples := make(chan domain.TransferSample)
	consumed := make(chan struct{})
	go func() {
		defer close(consumed)
		for s := range samples {
			p.applySample(slot, s)
		}
	}()

	var fillers sync.WaitGroup
	fillCtx, stopFillers := context.WithCancel(ctx)
	if p.deps.Fillers != nil {
		fillers.Add(1)
		go func() {
			defer fillers.Done()
			p.deps.Fillers.Run(fillCtx, p.setFiller)
		}()
	}

	err := p.deps.Uploader.Upload(ctx, slot.File, target, samples)
	<-consumed
	stopFillers()
	fillers.Wait()

	return err
}

func (p *page) startTransfer() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.workflow.AppendSuccess {
		p.banner.Error = ""
	} else {
		p.banner = domain.Banner{}
	}
	p.telemetry.Reset()
	p.stats = domain.TransferStats{}
	p.uploading = true
}

func (p *page) endTransfer(slot workflow.Slot, banner domain.Banner) {
	p.mu.Lock()
	p.banner = banner
	p.telemetry.Reset()
	p.stats = domain.TransferStats{}
	p.uploading = false
	onProgress := p.onProgress
	p.mu.Unlock()

	if onProgress != nil {
		onProgress(slot, domain.TransferStats{})
	}
}

func (p *page) successBanner(msg string) domain.Banner {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.workflow.AppendSuccess {
		return domain.Banner{Success: p.banner.Success + msg + "\n"}
	}

	return domain.Banner{Success: msg}
}

func (p *page) applySample(slot workflow.Slot, s domain.TransferSample) {
	p.mu.Lock()
	p.stats = p.telemetry.OnSample(s)
	stats := p.stats
	onProgress := p.onProgress
	p.mu.Unlock()

	if onProgress != nil {
		onProgress(slot, stats)
	}
}

func (p *page) setFiller(msg string) {
	p.mu.Lock()
	p.filler = msg
	onFiller := p.onFiller
	p.mu.Unlock()

	if onFiller != nil {
		onFiller(msg)
	}
}

// TriggerSync runs the workflow's sync step once every slot completed.
func (p *page) TriggerSync(ctx context.Context) error {
	s := p.workflow.Sync
	if s == nil {
		return ErrNoSync
	}
	if !p.machine.Done() {
		p.setBanner(domain.Banner{Error: "Complete all uploads first"})
		return ErrSyncLocked
	}

	p.mu.Lock()
	if p.syncing {
		p.mu.Unlock()
		return workflow.ErrBusy
	}
	p.syncing = true
	p.banner = domain.Banner{}
	p.mu.Unlock()

	err := p.deps.Sync.TriggerSync(ctx, s.URL)

	label := s.Label
	if label == "" {
		label = defaultSyncLabel
	}
	msg := s.SuccessMessage
	if msg == "" {
		msg = defaultSyncSuccess
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.syncing = false
	if err != nil {
		level.Error(p.logger).Log("msg", "sync failed", "err", err)
		p.banner = domain.Banner{Error: fmt.Sprintf("%s failed: %v", label, err)}
		return err
	}

	p.banner = domain.Banner{Success: msg}

	return nil
}

func (p *page) Banner() domain.Banner {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.banner
}

// Progress reports the live stats and whether a transfer is running.
func (p *page) Progress() (domain.TransferStats, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.stats, p.uploading
}

func (p *page) Filler() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.filler
}

func (p *page) setBanner(b domain.Banner) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.banner = b
}

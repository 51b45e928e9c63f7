package service

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/AhmedAlsudairy/vale-project-sub000/internal/cache"
	"github.com/AhmedAlsudairy/vale-project-sub000/internal/cloud"
	"github.com/AhmedAlsudairy/vale-project-sub000/internal/domain"
	"github.com/AhmedAlsudairy/vale-project-sub000/internal/events"
	"github.com/AhmedAlsudairy/vale-project-sub000/internal/export"
	"github.com/AhmedAlsudairy/vale-project-sub000/internal/status"
)

type created struct {
	kind  domain.RecordKind
	meta  domain.RecordMeta
	bands []status.Band
	sheet func(*export.Workbook) error
}

// effects runs the side effects of storing a record. Every step is best
// effort: failures are logged and never reach the caller.
type effects struct {
	deps Deps
}

func (f *effects) recordCreated(ctx context.Context, c created) {
	band := status.Worst(c.bands...)
	f.cacheStatus(ctx, c, band)
	f.publish(c, band)
	f.alert(ctx, c, band)
	f.notify(ctx, c, band)
}

// cacheStatus keeps the newest record per kind; back-dated records do not
// replace a later entry.
func (f *effects) cacheStatus(ctx context.Context, c created, band status.Band) {
	if f.deps.Status == nil {
		return
	}
	cur, err := f.deps.Status.Get(ctx, c.meta.TagNo)
	if err == nil {
		if prev, ok := cur[c.kind]; ok && prev.Date.After(c.meta.Date) {
			return
		}
	}
	entry := cache.Entry{Band: band, RecordID: c.meta.ID, Date: c.meta.Date}
	if err := f.deps.Status.Set(ctx, c.meta.TagNo, c.kind, entry); err != nil {
		logCacheError(err, c.meta.TagNo)
	}
}

func (f *effects) publish(c created, band status.Band) {
	if f.deps.Events == nil {
		return
	}
	err := f.deps.Events.Publish(events.RecordCreated{
		Kind:      c.kind,
		RecordID:  c.meta.ID,
		TagNo:     c.meta.TagNo,
		Date:      c.meta.Date,
		Inspector: c.meta.Inspector,
		Band:      band,
	})
	if err != nil {
		log.Error().Err(err).Str("tag", c.meta.TagNo).Msg("record event publish failed")
	}
}

func (f *effects) alert(ctx context.Context, c created, band status.Band) {
	if f.deps.Alerts == nil || !band.Alarming() {
		return
	}
	var findings []string
	for _, b := range c.bands {
		if b.Alarming() {
			findings = append(findings, string(b))
		}
	}
	a, err := f.deps.Alerts.CreateAlert(ctx, cloud.Alert{
		TagNo:      c.meta.TagNo,
		RecordKind: string(c.kind),
		RecordID:   c.meta.ID,
		Severity:   string(band),
		Message: fmt.Sprintf("%s #%d for %s reported %s",
			c.kind.Title(), c.meta.ID, c.meta.TagNo, strings.Join(findings, ", ")),
	})
	if err != nil {
		log.Error().Err(err).Str("tag", c.meta.TagNo).Msg("alert write failed")
		return
	}
	log.Warn().Str("alert_id", a.AlertID).Str("tag", c.meta.TagNo).Str("severity", a.Severity).Msg("alert raised")
}

func (f *effects) notify(ctx context.Context, c created, band status.Band) {
	if f.deps.Notifier == nil {
		return
	}
	link := f.upload(ctx, c)
	subject := fmt.Sprintf("%s recorded for %s: %s", c.kind.Title(), c.meta.TagNo, band)

	var b strings.Builder
	fmt.Fprintf(&b, "%s #%d\n\n", c.kind.Title(), c.meta.ID)
	fmt.Fprintf(&b, "Tag No: %s\n", c.meta.TagNo)
	fmt.Fprintf(&b, "Date: %s\n", c.meta.Date.Format("2006-01-02"))
	fmt.Fprintf(&b, "Inspector: %s\n", c.meta.Inspector)
	fmt.Fprintf(&b, "Status: %s\n", band)
	if c.meta.Remarks != "" {
		fmt.Fprintf(&b, "Remarks: %s\n", c.meta.Remarks)
	}
	if link != "" {
		fmt.Fprintf(&b, "\nSpreadsheet: %s\n", link)
	}
	if err := f.deps.Notifier.Send(ctx, subject, b.String()); err != nil {
		log.Error().Err(err).Str("tag", c.meta.TagNo).Msg("notification failed")
	}
}

// upload stores the single-record spreadsheet and returns its link, or "" when
// that is not possible.
func (f *effects) upload(ctx context.Context, c created) string {
	if f.deps.Uploader == nil || c.sheet == nil {
		return ""
	}
	data, err := workbook(c.sheet)
	if err != nil {
		log.Error().Err(err).Str("tag", c.meta.TagNo).Msg("spreadsheet build failed")
		return ""
	}
	key := cloud.ExportKey(path.Join("records", string(c.kind), c.meta.TagNo), ".xlsx")
	link, err := f.deps.Uploader.UploadSpreadsheet(ctx, key, data, export.ContentType)
	if err != nil {
		log.Error().Err(err).Str("tag", c.meta.TagNo).Msg("spreadsheet upload failed")
		return ""
	}
	return link
}

func logCacheError(err error, tag string) {
	log.Error().Err(err).Str("tag", tag).Msg("status cache update failed")
}

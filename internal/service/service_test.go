package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/AhmedAlsudairy/vale-project-sub000/internal/cache"
	"github.com/AhmedAlsudairy/vale-project-sub000/internal/cloud"
	"github.com/AhmedAlsudairy/vale-project-sub000/internal/database"
	"github.com/AhmedAlsudairy/vale-project-sub000/internal/domain"
	"github.com/AhmedAlsudairy/vale-project-sub000/internal/events"
	"github.com/AhmedAlsudairy/vale-project-sub000/internal/qr"
	"github.com/AhmedAlsudairy/vale-project-sub000/internal/repository"
	"github.com/AhmedAlsudairy/vale-project-sub000/internal/status"
)

var errBoom = errors.New("boom")

type fakeNotifier struct {
	subjects, messages []string
	err                error
}

func (f *fakeNotifier) Send(_ context.Context, subject, message string) error {
	f.subjects = append(f.subjects, subject)
	f.messages = append(f.messages, message)
	return f.err
}

type fakeUploader struct {
	keys []string
	err  error
}

func (f *fakeUploader) UploadSpreadsheet(_ context.Context, key string, data []byte, _ string) (string, error) {
	f.keys = append(f.keys, key)
	if f.err != nil {
		return "", f.err
	}
	return "https://bucket.example/" + key, nil
}

type fakeAlerter struct {
	alerts []cloud.Alert
	err    error
}

func (f *fakeAlerter) CreateAlert(_ context.Context, a cloud.Alert) (cloud.Alert, error) {
	a.AlertID = "a-1"
	f.alerts = append(f.alerts, a)
	return a, f.err
}

func (f *fakeAlerter) AlertsForTag(_ context.Context, tag string) ([]cloud.Alert, error) {
	var out []cloud.Alert
	for i := len(f.alerts) - 1; i >= 0; i-- {
		if f.alerts[i].TagNo == tag {
			out = append(out, f.alerts[i])
		}
	}
	return out, nil
}

func (f *fakeAlerter) AcknowledgeAlert(_ context.Context, alertID string) error {
	for i := range f.alerts {
		if f.alerts[i].AlertID == alertID {
			f.alerts[i].Acknowledged = true
			return nil
		}
	}
	return fmt.Errorf("%w: %s", cloud.ErrAlertNotFound, alertID)
}

type fakePublisher struct {
	evts []events.RecordCreated
	err  error
}

func (f *fakePublisher) Publish(evt events.RecordCreated) error {
	f.evts = append(f.evts, evt)
	return f.err
}

type fakeCache struct {
	m   map[string]map[domain.RecordKind]cache.Entry
	err error
}

func newFakeCache() *fakeCache {
	return &fakeCache{m: map[string]map[domain.RecordKind]cache.Entry{}}
}

func (f *fakeCache) Set(_ context.Context, tag string, kind domain.RecordKind, e cache.Entry) error {
	if f.err != nil {
		return f.err
	}
	if f.m[tag] == nil {
		f.m[tag] = map[domain.RecordKind]cache.Entry{}
	}
	f.m[tag][kind] = e
	return nil
}

func (f *fakeCache) Get(_ context.Context, tag string) (map[domain.RecordKind]cache.Entry, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := map[domain.RecordKind]cache.Entry{}
	for k, v := range f.m[tag] {
		out[k] = v
	}
	return out, nil
}

func (f *fakeCache) Forget(_ context.Context, tag string) error {
	delete(f.m, tag)
	return nil
}

type fakeInvoker struct{ months []string }

func (f *fakeInvoker) InvokeExportAsync(_ context.Context, month string) error {
	f.months = append(f.months, month)
	return nil
}

func newServices(t *testing.T, deps Deps) *Services {
	t.Helper()
	db, err := database.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db, deps)
}

func fp(v float64) *float64 { return &v }

func TestCreateBrushFansOut(t *testing.T) {
	n, u, a, p, c := &fakeNotifier{}, &fakeUploader{}, &fakeAlerter{}, &fakePublisher{}, newFakeCache()
	svcs := newServices(t, Deps{Notifier: n, Uploader: u, Alerts: a, Events: p, Status: c})
	ctx := context.Background()

	v, err := svcs.Brush.Create(ctx, BrushInput{
		RecordInput:  RecordInput{TagNo: " M-1 ", Date: "2024-06-03", Inspector: "noor"},
		BrushHeights: domain.Points{"A1": 24, "A2": 30},
		SlipRingIR:   fp(5),
	})
	if err != nil {
		t.Fatal(err)
	}
	if v.ID == 0 || v.TagNo != "M-1" || v.HeightBand != status.Critical {
		t.Fatalf("view = %+v", v)
	}
	eq, err := svcs.Repos.GetEquipmentByTag(ctx, "M-1")
	if err != nil || eq.Type != domain.Motor || eq.Name != "M-1" {
		t.Fatalf("equipment = %+v %v", eq, err)
	}

	if len(u.keys) != 1 || !strings.HasPrefix(u.keys[0], "records/carbon_brush/M-1/") {
		t.Errorf("upload keys = %v", u.keys)
	}
	if len(n.subjects) != 1 || !strings.Contains(n.subjects[0], "Critical") {
		t.Errorf("subjects = %v", n.subjects)
	}
	if !strings.Contains(n.messages[0], "https://bucket.example/records/") {
		t.Errorf("message lacks link: %s", n.messages[0])
	}
	if len(a.alerts) != 1 || a.alerts[0].Severity != "Critical" || a.alerts[0].RecordID != v.ID {
		t.Errorf("alerts = %+v", a.alerts)
	}
	if len(p.evts) != 1 || p.evts[0].Kind != domain.KindBrush || p.evts[0].Band != status.Critical {
		t.Errorf("events = %+v", p.evts)
	}
	if e := c.m["M-1"][domain.KindBrush]; e.RecordID != v.ID || e.Band != status.Critical {
		t.Errorf("cache = %+v", c.m)
	}

	logged, err := svcs.Equipment.Alerts(ctx, v.EquipmentID)
	if err != nil || len(logged) != 1 {
		t.Fatalf("alerts = %+v %v", logged, err)
	}
	if err := svcs.Equipment.AcknowledgeAlert(ctx, logged[0].AlertID); err != nil || !a.alerts[0].Acknowledged {
		t.Errorf("ack: %v", err)
	}
	if err := svcs.Equipment.AcknowledgeAlert(ctx, "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("unknown alert ack = %v", err)
	}
	if err := svcs.Equipment.AcknowledgeAlert(ctx, " "); !errors.Is(err, ErrValidation) {
		t.Errorf("blank ack: %v", err)
	}
}

func TestCreateSurvivesCollaboratorFailures(t *testing.T) {
	c := newFakeCache()
	c.err = errBoom
	svcs := newServices(t, Deps{
		Notifier: &fakeNotifier{err: errBoom},
		Uploader: &fakeUploader{err: errBoom},
		Alerts:   &fakeAlerter{err: errBoom},
		Events:   &fakePublisher{err: errBoom},
		Status:   c,
	})
	_, err := svcs.Thermography.Create(context.Background(), ThermographyInput{
		RecordInput:  RecordInput{TagNo: "ESP-T2", EquipmentType: domain.ESPTransformer},
		Temperatures: domain.Points{"Bushing": 95},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
}

func TestHealthyRecordRaisesNoAlert(t *testing.T) {
	a := &fakeAlerter{}
	svcs := newServices(t, Deps{Alerts: a})
	_, err := svcs.Winding.Create(context.Background(), WindingInput{
		RecordInput: RecordInput{TagNo: "M-2"},
		UG30s:       fp(10), UG1Min: fp(20), UG10Min: fp(50),
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(a.alerts) != 0 {
		t.Fatalf("alerts = %+v", a.alerts)
	}
}

func TestCreateValidation(t *testing.T) {
	svcs := newServices(t, Deps{})
	ctx := context.Background()
	cases := []struct {
		name string
		in   BrushInput
	}{
		{"missing tag", BrushInput{}},
		{"bad date", BrushInput{RecordInput: RecordInput{TagNo: "M-1", Date: "03/06/2024"}}},
		{"bad type", BrushInput{RecordInput: RecordInput{TagNo: "M-1", EquipmentType: "pump"}}},
		{"negative height", BrushInput{RecordInput: RecordInput{TagNo: "M-1"}, BrushHeights: domain.Points{"A1": -1}}},
		{"negative ir", BrushInput{RecordInput: RecordInput{TagNo: "M-1"}, SlipRingIR: fp(-2)}},
	}
	for _, tc := range cases {
		if _, err := svcs.Brush.Create(ctx, tc.in); !errors.Is(err, ErrValidation) {
			t.Errorf("%s: err = %v", tc.name, err)
		}
	}
}

func TestStatusCacheKeepsNewest(t *testing.T) {
	c := newFakeCache()
	svcs := newServices(t, Deps{Status: c})
	ctx := context.Background()
	newer, err := svcs.Brush.Create(ctx, BrushInput{RecordInput: RecordInput{TagNo: "M-1", Date: "2024-06-10"}, BrushHeights: domain.Points{"A": 40}})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svcs.Brush.Create(ctx, BrushInput{RecordInput: RecordInput{TagNo: "M-1", Date: "2024-06-01"}, BrushHeights: domain.Points{"A": 20}}); err != nil {
		t.Fatal(err)
	}
	e := c.m["M-1"][domain.KindBrush]
	if e.RecordID != newer.ID || e.Band != status.Good {
		t.Fatalf("entry = %+v", e)
	}
}

func TestUpdateAndDeleteRecord(t *testing.T) {
	svcs := newServices(t, Deps{})
	ctx := context.Background()
	v, err := svcs.Thermography.Create(ctx, ThermographyInput{RecordInput: RecordInput{TagNo: "M-1"}, Temperatures: domain.Points{"A": 50}})
	if err != nil {
		t.Fatal(err)
	}
	up, err := svcs.Thermography.Update(ctx, v.ID, ThermographyInput{RecordInput: RecordInput{TagNo: "M-1", Remarks: "recheck"}, Temperatures: domain.Points{"A": 70}})
	if err != nil {
		t.Fatal(err)
	}
	if up.Band != status.Warning || up.Remarks != "recheck" {
		t.Fatalf("updated = %+v", up)
	}
	if _, err := svcs.Thermography.Update(ctx, 999, ThermographyInput{RecordInput: RecordInput{TagNo: "M-1"}}); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
	if err := svcs.Thermography.Delete(ctx, v.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svcs.Thermography.Get(ctx, v.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestForecast(t *testing.T) {
	svcs := newServices(t, Deps{})
	ctx := context.Background()
	first, err := svcs.Brush.Create(ctx, BrushInput{RecordInput: RecordInput{TagNo: "M-1", Date: "2024-06-01"}, BrushHeights: domain.Points{"A": 40, "B": 41}})
	if err != nil {
		t.Fatal(err)
	}
	id := first.EquipmentID

	f, err := svcs.Equipment.Forecast(ctx, id)
	if err != nil || f != nil {
		t.Fatalf("single inspection: %+v %v", f, err)
	}

	if _, err := svcs.Brush.Create(ctx, BrushInput{RecordInput: RecordInput{TagNo: "M-1", Date: "2024-06-08"}, BrushHeights: domain.Points{"A": 38, "B": 39}}); err != nil {
		t.Fatal(err)
	}
	f, err = svcs.Equipment.Forecast(ctx, id)
	if err != nil || f == nil {
		t.Fatalf("forecast: %+v %v", f, err)
	}
	if f.DaysRemaining < 45.49 || f.DaysRemaining > 45.51 {
		t.Errorf("days = %v", f.DaysRemaining)
	}
	if _, err := svcs.Equipment.Forecast(ctx, 999); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestEquipmentRegistry(t *testing.T) {
	svcs := newServices(t, Deps{StaticIdentifiers: []string{"ESP-1", "M-1"}})
	ctx := context.Background()

	e, err := svcs.Equipment.Create(ctx, EquipmentInput{TagNo: "M-1", Name: "Kiln fan", Type: domain.Motor})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svcs.Equipment.Create(ctx, EquipmentInput{TagNo: "M-1", Type: domain.Motor}); !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate: %v", err)
	}
	if _, err := svcs.Equipment.Create(ctx, EquipmentInput{TagNo: "X", Type: "pump"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("bad type: %v", err)
	}
	if _, err := svcs.Equipment.Create(ctx, EquipmentInput{TagNo: "M-2", Type: domain.Motor}); err != nil {
		t.Fatal(err)
	}

	ids, err := svcs.Equipment.Identifiers(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(ids, ",") != "ESP-1,M-1,M-2" {
		t.Errorf("identifiers = %v", ids)
	}

	res, ok, err := svcs.Equipment.Scan(ctx, "M-1")
	if err != nil || !ok || res.Shape != qr.ShapeRawTag || res.Equipment.ID != e.ID {
		t.Errorf("scan = %+v %v %v", res, ok, err)
	}
	if _, ok, _ := svcs.Equipment.Scan(ctx, "NOPE"); ok {
		t.Error("unknown tag resolved")
	}

	png, err := svcs.Equipment.QRCode(ctx, e.ID, 0, false)
	if err != nil || !strings.HasPrefix(string(png), "\x89PNG") {
		t.Errorf("qr: %v", err)
	}
	if _, err := svcs.Equipment.QRCode(ctx, e.ID, qr.MaxSize+1, false); !errors.Is(err, ErrValidation) {
		t.Errorf("oversized qr: %v", err)
	}
	if _, err := svcs.Equipment.QRCode(ctx, e.ID, 0, true); !errors.Is(err, ErrUnavailable) {
		t.Errorf("url qr without base: %v", err)
	}
	if _, err := svcs.Equipment.Status(ctx, e.ID); !errors.Is(err, ErrUnavailable) {
		t.Errorf("status without cache: %v", err)
	}
}

func TestFromMQTT(t *testing.T) {
	svcs := newServices(t, Deps{})
	payload := []byte(`{"tag_no":"ESP-T2","timestamp":"2024-06-03T08:00:00Z","points":{"Bushing":"82.5","Tank":60},"ambient_c":31}`)
	v, err := svcs.Thermography.FromMQTT(context.Background(), "maintenance/thermography", payload)
	if err != nil {
		t.Fatal(err)
	}
	if v.Inspector != "camera" || v.Band != status.Critical || len(v.Temperatures) != 2 {
		t.Fatalf("view = %+v", v)
	}
	if !v.Date.Equal(time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC)) {
		t.Errorf("date = %v", v.Date)
	}
	if _, err := svcs.Thermography.FromMQTT(context.Background(), "t", []byte(`{"tag_no":"X"}`)); !errors.Is(err, ErrValidation) {
		t.Errorf("empty points: %v", err)
	}
	if _, err := svcs.Thermography.FromMQTT(context.Background(), "t", []byte(`nope`)); !errors.Is(err, ErrValidation) {
		t.Errorf("malformed: %v", err)
	}
}

func TestMonthlyExport(t *testing.T) {
	inv := &fakeInvoker{}
	svcs := newServices(t, Deps{Exports: inv})
	ctx := context.Background()
	for _, d := range []string{"2024-05-31", "2024-06-01", "2024-06-30T23:00:00Z", "2024-07-01"} {
		if _, err := svcs.Brush.Create(ctx, BrushInput{RecordInput: RecordInput{TagNo: "M-1", Date: d}, BrushHeights: domain.Points{"A": 35}}); err != nil {
			t.Fatal(err)
		}
	}
	data, rows, err := svcs.Exports.Monthly(ctx, "2024-06")
	if err != nil {
		t.Fatal(err)
	}
	if rows != 2 || len(data) == 0 {
		t.Fatalf("rows = %d, bytes = %d", rows, len(data))
	}
	if _, _, err := svcs.Exports.Monthly(ctx, "June"); !errors.Is(err, ErrValidation) {
		t.Errorf("bad month: %v", err)
	}
	if err := svcs.Exports.RequestMonthly(ctx, "2024-06"); err != nil || len(inv.months) != 1 {
		t.Errorf("request: %v %v", err, inv.months)
	}
	noLambda := newServices(t, Deps{})
	if err := noLambda.Exports.RequestMonthly(ctx, "2024-06"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("without lambda: %v", err)
	}
}

func TestServicePlan(t *testing.T) {
	svcs := newServices(t, Deps{FailureRate: 0.3, ServiceInterval: 90 * 24 * time.Hour})
	ctx := context.Background()
	v, err := svcs.Winding.Create(ctx, WindingInput{RecordInput: RecordInput{TagNo: "M-1", Date: "2024-06-01"}})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svcs.Thermography.Create(ctx, ThermographyInput{RecordInput: RecordInput{TagNo: "M-1", Date: "2024-06-20"}, Temperatures: domain.Points{"A": 40}}); err != nil {
		t.Fatal(err)
	}
	plan, err := svcs.Maintenance.ServicePlan(ctx, v.EquipmentID)
	if err != nil {
		t.Fatal(err)
	}
	if !plan.LastService.Equal(time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("last service = %v", plan.LastService)
	}
	if plan.FailureRisk30Days <= 0 || plan.FailureRisk90Days <= plan.FailureRisk30Days {
		t.Errorf("risk = %v / %v", plan.FailureRisk30Days, plan.FailureRisk90Days)
	}
	if plan.Recommendation == "" {
		t.Error("missing recommendation")
	}
}

package statuspage

import (
	"encoding/json"
	"errors"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/castawaylabs/statuspage/schema"
)

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile("testdata/" + name)
	if err != nil {
		t.Fatalf("reading fixture %s: %v", name, err)
	}
	return data
}

func TestIncidentImpactOrdering(t *testing.T) {
	ordered := []IncidentImpact{ImpactNone, ImpactMaintenance, ImpactMinor, ImpactMajor, ImpactCritical}
	for i := range ordered {
		for j := range ordered {
			if (ordered[i] < ordered[j]) != (i < j) {
				t.Errorf("%v < %v should be %v", ordered[i], ordered[j], i < j)
			}
		}
	}
}

func TestStatusIndicatorOrdering(t *testing.T) {
	ordered := []StatusIndicator{IndicatorNone, IndicatorMaintenance, IndicatorMinor, IndicatorMajor, IndicatorCritical}
	for i := 1; i < len(ordered); i++ {
		if !(ordered[i-1] < ordered[i]) {
			t.Errorf("%v should sort before %v", ordered[i-1], ordered[i])
		}
	}
}

func TestEnumTokens(t *testing.T) {
	var indicator StatusIndicator
	if err := indicator.UnmarshalText([]byte("critical")); err != nil || indicator != IndicatorCritical {
		t.Errorf("critical: got %v, %v", indicator, err)
	}

	var cs ComponentStatus
	if err := cs.UnmarshalText([]byte("under_maintenance")); err != nil || cs != ComponentUnderMaintenance {
		t.Errorf("under_maintenance: got %v, %v", cs, err)
	}

	var is IncidentStatus
	if err := is.UnmarshalText([]byte("postmortem")); err != nil || is != IncidentPostmortem {
		t.Errorf("postmortem: got %v, %v", is, err)
	}

	var impact IncidentImpact
	if err := impact.UnmarshalText([]byte("maintenance")); err != nil || impact != ImpactMaintenance {
		t.Errorf("maintenance: got %v, %v", impact, err)
	}

	if text, _ := ImpactMajor.MarshalText(); string(text) != "major" {
		t.Errorf("unexpected impact token %q", text)
	}
	if IndicatorMinor.String() != "minor" {
		t.Errorf("unexpected indicator token %q", IndicatorMinor.String())
	}
}

func TestEnumRejectsUnknownTokens(t *testing.T) {
	tests := []struct {
		name string
		v    interface{ UnmarshalText([]byte) error }
		text string
	}{
		{"indicator bogus", new(StatusIndicator), "bogus"},
		{"indicator wrong case", new(StatusIndicator), "Minor"},
		{"component status camel", new(ComponentStatus), "majorOutage"},
		{"component status indicator token", new(ComponentStatus), "minor"},
		{"incident status", new(IncidentStatus), "Resolved"},
		{"impact", new(IncidentImpact), "severe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.v.UnmarshalText([]byte(tt.text))
			var ee *EnumError
			if !errors.As(err, &ee) {
				t.Fatalf("expected *EnumError, got %v", err)
			}
		})
	}
}

func TestUnknownEnumFailsDecoding(t *testing.T) {
	tests := []struct {
		name string
		def  string
		doc  string
	}{
		{"status indicator", schema.Status, `{"indicator": "bogus", "description": "x"}`},
		{"component status", schema.AffectedComponent, `{"code": "c", "name": "n", "old_status": "bogus", "new_status": "operational"}`},
		{"incident status", schema.IncidentUpdate, `{"id": "u", "status": "bogus", "body": "b",
			"created_at": "2024-01-01T00:00:00Z", "updated_at": "2024-01-01T00:00:00Z", "display_at": "2024-01-01T00:00:00Z"}`},
		{"incident impact", schema.Incident, `{"id": "i", "name": "n", "status": "resolved",
			"created_at": "2024-01-01T00:00:00Z", "impact": "bogus", "shortlink": "s"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v map[string]any
			err := Unmarshal(tt.def, []byte(tt.doc), &v)
			var de *DecodeError
			if !errors.As(err, &de) {
				t.Fatalf("expected *DecodeError, got %v", err)
			}
			if de.Path == "" {
				t.Errorf("expected a path on %v", de)
			}
		})
	}
}

func TestAffectedComponentsNullEqualsAbsent(t *testing.T) {
	base := `"id": "u1", "status": "resolved", "body": "done",
		"created_at": "2024-01-01T00:00:00Z", "updated_at": "2024-01-01T00:00:00Z", "display_at": "2024-01-01T00:00:00Z"`

	var withNull, absent IncidentUpdate
	if err := Unmarshal(schema.IncidentUpdate, []byte(`{`+base+`, "affected_components": null}`), &withNull); err != nil {
		t.Fatalf("null: %v", err)
	}
	if err := Unmarshal(schema.IncidentUpdate, []byte(`{`+base+`}`), &absent); err != nil {
		t.Fatalf("absent: %v", err)
	}

	if len(withNull.AffectedComponents) != 0 || len(absent.AffectedComponents) != 0 {
		t.Errorf("expected no affected components, got %v and %v", withNull.AffectedComponents, absent.AffectedComponents)
	}
	if !reflect.DeepEqual(withNull, absent) {
		t.Errorf("null and absent decode differently:\n%#v\n%#v", withNull, absent)
	}
}

func TestMissingRequiredField(t *testing.T) {
	_, err := ParseComponent([]byte(`{"id": "c1", "name": "API", "status": "operational",
		"created_at": "2024-01-01T00:00:00Z", "updated_at": "2024-01-01T00:00:00Z",
		"position": 1, "page_id": "p"}`))

	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected *DecodeError, got %v", err)
	}
	if de.Path != "/showcase" {
		t.Errorf("expected path /showcase, got %q", de.Path)
	}
}

func TestComponentDefaults(t *testing.T) {
	c, err := ParseComponent([]byte(`{"id": "c1", "name": "API", "status": "partial_outage",
		"created_at": "2024-01-01T00:00:00Z", "updated_at": "2024-01-01T00:00:00Z",
		"position": 4, "showcase": true, "page_id": "p", "start_date": "2023-11-05", "extra": 1}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if c.Status != ComponentPartialOutage || c.Position != 4 || !c.Showcase {
		t.Errorf("unexpected component %+v", c)
	}
	if c.Description != nil || c.GroupID != nil || c.Group != nil || c.OnlyShowIfDegraded != nil {
		t.Errorf("optional fields should be nil: %+v", c)
	}
	if len(c.Components) != 0 {
		t.Errorf("components should default to empty, got %v", c.Components)
	}
	if c.StartDate == nil || *c.StartDate != (Date{Year: 2023, Month: time.November, Day: 5}) {
		t.Errorf("unexpected start date %v", c.StartDate)
	}
}

func TestNonIntegerPosition(t *testing.T) {
	_, err := ParseComponent([]byte(`{"id": "c1", "name": "API", "status": "operational",
		"created_at": "2024-01-01T00:00:00Z", "updated_at": "2024-01-01T00:00:00Z",
		"position": 1.5, "showcase": true, "page_id": "p"}`))
	if err == nil {
		t.Fatal("expected fractional position to be rejected")
	}
}

func TestTimestampOffsetPreserved(t *testing.T) {
	inc, err := ParseIncident([]byte(`{"id": "i", "name": "n", "status": "identified",
		"created_at": "2024-03-12T16:40:12.034+05:30", "impact": "minor", "shortlink": "s"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, offset := inc.CreatedAt.Zone(); offset != 5*3600+30*60 {
		t.Errorf("offset not preserved: %d", offset)
	}
	if got := inc.CreatedAt.Format(time.RFC3339Nano); got != "2024-03-12T16:40:12.034+05:30" {
		t.Errorf("round trip changed timestamp: %s", got)
	}
	if inc.UpdatedAt != nil || inc.ResolvedAt != nil {
		t.Errorf("absent optional timestamps should be nil")
	}
	if len(inc.IncidentUpdates) != 0 || len(inc.Components) != 0 {
		t.Errorf("defaulted lists should be empty")
	}
}

func TestParseSummaryFixture(t *testing.T) {
	s, err := ParseSummary(readFixture(t, "summary.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s.Status.Indicator != IndicatorMinor || s.Status.Description != "Partial System Outage" {
		t.Errorf("unexpected status %+v", s.Status)
	}
	if len(s.Components) != 3 || len(s.Incidents) != 1 {
		t.Fatalf("unexpected counts: %d components, %d incidents", len(s.Components), len(s.Incidents))
	}

	groups := s.Groups()
	if len(groups) != 1 || groups[0].ID != "grp0platform" {
		t.Fatalf("unexpected groups %+v", groups)
	}
	if len(groups[0].Members) != 2 || groups[0].Members[0].ID != "8l4ygp009s5s" || groups[0].Members[1].ID != "brv1bkgrwx7q" {
		t.Errorf("members not ordered by position: %+v", groups[0].Members)
	}
	if got := s.WorstImpact(); got != ImpactMajor {
		t.Errorf("unexpected worst impact %v", got)
	}
	if _, ok := s.ComponentByID("brv1bkgrwx7q"); !ok {
		t.Error("component lookup failed")
	}
	if _, ok := s.ComponentByID("missing"); ok {
		t.Error("lookup of a missing component succeeded")
	}
}

func TestLatestUpdate(t *testing.T) {
	data := readFixture(t, "incident.json")
	var resp struct {
		Incident Incident `json:"incident"`
	}
	if err := Unmarshal(schema.IncidentResponse, data, &resp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	latest, ok := resp.Incident.LatestUpdate()
	if !ok || latest.ID != "x1tl8sl2lhzk" {
		t.Errorf("unexpected latest update %+v", latest)
	}
	if _, ok := (Incident{}).LatestUpdate(); ok {
		t.Error("incident without updates has no latest update")
	}
}

func TestReencodeKeepsTokens(t *testing.T) {
	s, err := ParseSummary(readFixture(t, "summary.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	again, err := ParseSummary(out)
	if err != nil {
		t.Fatalf("re-encoded summary does not parse: %v\n%s", err, out)
	}
	if again.Status != s.Status || again.Incidents[0].Impact != ImpactMajor {
		t.Errorf("re-encoded summary differs: %+v", again.Status)
	}
}

func TestDate(t *testing.T) {
	d, err := ParseDate("2020-02-29")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.String() != "2020-02-29" {
		t.Errorf("unexpected date %s", d)
	}
	if !d.In(time.UTC).Equal(time.Date(2020, 2, 29, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected midnight %v", d.In(time.UTC))
	}
	if _, err := ParseDate("2020-02-29T10:00:00Z"); err == nil {
		t.Error("timestamps are not dates")
	}
}

package api

import (
	"context"
	"net/http"
	"strings"
	"testing"

	pkgerrors "github.com/durianostics/durianostics-client/pkg/errors"
)

func TestAnalyticsRejectsBadTimeRange(t *testing.T) {
	calls := 0
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}), nil)

	_, err := client.Analytics(context.Background(), "42", "decade")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("invalid range must not reach the network")
	}
}

func TestAnalyticsDecodesDashboard(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/scanner/analytics/42" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("time_range") != "week" {
			t.Errorf("expected time_range=week, got %q", r.URL.Query().Get("time_range"))
		}
		w.Write([]byte(`{
			"success": true,
			"stats": {"total_scans": 12, "export_ready": 8, "rejected": 1, "avg_quality": 87.5, "top_variety": "Musang King", "weekly_growth": 20},
			"weekly_data": [{"day": "Mon", "date": "2026-08-24", "scans": 3, "quality": 88.1}],
			"quality_distribution": [{"range": "90-100", "count": 5, "percentage": 41.7}],
			"recent_scans": [{"id": "s1", "variety": "Musang King", "quality": 92, "status": "Export Ready", "time": "2 hrs ago"}],
			"time_range": "week"
		}`))
	}), nil)

	analytics, err := client.Analytics(context.Background(), "42", TimeRangeWeek)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if analytics.Stats.TotalScans != 12 || analytics.Stats.TopVariety != "Musang King" {
		t.Fatalf("unexpected stats %+v", analytics.Stats)
	}
	if len(analytics.WeeklyData) != 1 || analytics.WeeklyData[0].Day != "Mon" {
		t.Fatalf("unexpected weekly data %+v", analytics.WeeklyData)
	}
	if len(analytics.RecentScans) != 1 || analytics.RecentScans[0].Status != "Export Ready" {
		t.Fatalf("unexpected recent scans %+v", analytics.RecentScans)
	}
}

func TestDetectSendsMultipartImage(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parsing multipart form: %v", err)
		}
		if r.FormValue("user_id") != "42" || r.FormValue("save_to_history") != "true" {
			t.Errorf("unexpected form fields %v", r.MultipartForm.Value)
		}
		file, header, err := r.FormFile("image")
		if err != nil {
			t.Errorf("expected image part: %v", err)
		} else {
			file.Close()
			if header.Filename != "durian.jpg" {
				t.Errorf("unexpected filename %q", header.Filename)
			}
		}
		w.Write([]byte(`{
			"success": true,
			"detection": {"count": 2, "objects": [{"class_id": 0, "class_name": "ripe", "confidence": 0.91}]},
			"analysis": {"found": true, "total_count": 2, "primary_class": "ripe", "quality_score": 91, "recommendation": "Good quality durian"},
			"color": {"success": true, "color_class": "yellow-green", "confidence": 0.87},
			"scan_saved": true,
			"scan_id": "abc123"
		}`))
	}), nil)

	result, err := client.Detect(context.Background(), "42", Upload{
		FileName:    "durian.jpg",
		ContentType: "image/jpeg",
		Reader:      strings.NewReader("fake-jpeg-bytes"),
	}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Detection.Count != 2 || result.Analysis.PrimaryClass != "ripe" {
		t.Fatalf("unexpected result %+v", result)
	}
	if !result.ScanSaved || result.ScanID != "abc123" {
		t.Fatalf("expected scan history fields decoded, got %+v", result)
	}
}

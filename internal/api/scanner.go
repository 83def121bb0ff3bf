package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	pkgerrors "github.com/durianostics/durianostics-client/pkg/errors"
)

// Analytics time ranges accepted by the backend.
const (
	TimeRangeWeek  = "week"
	TimeRangeMonth = "month"
	TimeRangeYear  = "year"
)

// ScanStats aggregates a user's scans over the selected range.
type ScanStats struct {
	TotalScans   int     `json:"total_scans"`
	ExportReady  int     `json:"export_ready"`
	Rejected     int     `json:"rejected"`
	AvgQuality   float64 `json:"avg_quality"`
	TopVariety   string  `json:"top_variety"`
	WeeklyGrowth float64 `json:"weekly_growth"`
}

// DailyScans is one day's bar in the weekly chart.
type DailyScans struct {
	Day     string  `json:"day"`
	Date    string  `json:"date"`
	Scans   int     `json:"scans"`
	Quality float64 `json:"quality"`
}

// QualityBucket is one slice of the quality score distribution.
type QualityBucket struct {
	Range      string  `json:"range"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// RecentScan is one row in the recent activity list.
type RecentScan struct {
	ID           string  `json:"id"`
	Variety      string  `json:"variety"`
	Quality      float64 `json:"quality"`
	Status       string  `json:"status"`
	Time         string  `json:"time"`
	ImageURL     string  `json:"image_url"`
	ThumbnailURL string  `json:"thumbnail_url"`
	CreatedAt    string  `json:"created_at"`
	DurianCount  int     `json:"durian_count"`
	Confidence   float64 `json:"confidence"`
}

// Analytics is the dashboard payload for one user.
type Analytics struct {
	Stats               ScanStats       `json:"stats"`
	WeeklyData          []DailyScans    `json:"weekly_data"`
	QualityDistribution []QualityBucket `json:"quality_distribution"`
	RecentScans         []RecentScan    `json:"recent_scans"`
	TimeRange           string          `json:"time_range"`
}

// DetectedObject is one model hit in an uploaded image.
type DetectedObject struct {
	ClassID    int     `json:"class_id"`
	ClassName  string  `json:"class_name"`
	Confidence float64 `json:"confidence"`
}

// Detection lists what the model found.
type Detection struct {
	Count   int              `json:"count"`
	Objects []DetectedObject `json:"objects"`
	Primary *DetectedObject  `json:"primary"`
}

// Analysis is the quality verdict derived from the detections.
type Analysis struct {
	Found             bool    `json:"found"`
	TotalCount        int     `json:"total_count"`
	AverageConfidence float64 `json:"average_confidence"`
	PrimaryClass      string  `json:"primary_class"`
	PrimaryConfidence float64 `json:"primary_confidence"`
	QualityScore      float64 `json:"quality_score"`
	Recommendation    string  `json:"recommendation"`
	Message           string  `json:"message"`
}

// ColorResult is the husk color classification.
type ColorResult struct {
	Success    bool    `json:"success"`
	ColorClass string  `json:"color_class"`
	Confidence float64 `json:"confidence"`
}

// ScanResult is the combined response from one image scan.
type ScanResult struct {
	Detection Detection   `json:"detection"`
	Analysis  Analysis    `json:"analysis"`
	Color     ColorResult `json:"color"`
	ScanSaved bool        `json:"scan_saved"`
	ScanID    string      `json:"scan_id"`
}

// Analytics fetches the dashboard payload for one user. An empty
// timeRange takes the backend default (month).
func (c *Client) Analytics(ctx context.Context, userID, timeRange string) (*Analytics, error) {
	switch timeRange {
	case "", TimeRangeWeek, TimeRangeMonth, TimeRangeYear:
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("invalid time range %q", timeRange)).
			WithDetails(map[string]string{"time_range": "must be week, month, or year"})
	}

	query := url.Values{}
	if timeRange != "" {
		query.Set("time_range", timeRange)
	}
	var analytics Analytics
	err := c.get(ctx, "scanner_analytics", "/scanner/analytics/"+url.PathEscape(userID), query, &analytics)
	if err != nil {
		return nil, err
	}
	return &analytics, nil
}

// Detect uploads one image for detection, quality analysis, and color
// classification. saveToHistory controls whether the backend records
// the scan against the user.
func (c *Client) Detect(ctx context.Context, userID string, image Upload, saveToHistory bool) (*ScanResult, error) {
	fields := map[string]string{
		"user_id":         userID,
		"save_to_history": strconv.FormatBool(saveToHistory),
	}
	var result ScanResult
	err := c.sendMultipart(ctx, "scanner_detect", http.MethodPost, "/scanner/detect",
		fields, map[string]Upload{"image": image}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

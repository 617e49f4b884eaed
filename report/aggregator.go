package report

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"amserver/access"
	"amserver/model"
)

type Range string

const (
	RangeDaily   Range = "daily"
	RangeWeekly  Range = "weekly"
	RangeMonthly Range = "monthly"
)

// Window sizes per range: daily covers the last 7 days, weekly the last
// 8 ISO weeks, monthly the last 12 months, each including the current one.
const (
	dailyWindowDays    = 7
	weeklyWindowWeeks  = 8
	monthlyWindowMonths = 12
)

const QueryTimeout = 25 * time.Second

var (
	ErrTimeout      = errors.New("aggregation query timed out")
	ErrUnknownRange = errors.New("unknown report range")
)

type Bucket struct {
	Label       string `json:"label"`
	GunAlerts   int    `json:"gunAlerts"`
	KnifeAlerts int    `json:"knifeAlerts"`
	AlarmAlerts int    `json:"alarmAlerts"`
}

type Report struct {
	Buckets   []Bucket
	HasAccess bool
	HasCamera bool
	HasAlarm  bool
}

// Aggregate computes the time-bucketed counts for one user. The alert and
// alarm-event reads are independent and issued concurrently, each under
// its own timeout. A user without any access gets an empty report, not an
// error.
func Aggregate(db *gorm.DB, userId uint64, rng Range) (Report, error) {
	return aggregateAt(db, userId, rng, time.Now())
}

func aggregateAt(db *gorm.DB, userId uint64, rng Range, now time.Time) (Report, error) {
	if rng != RangeDaily && rng != RangeWeekly && rng != RangeMonthly {
		return Report{}, fmt.Errorf("%w: %q", ErrUnknownRange, rng)
	}
	snapshot, err := access.Resolve(db, userId)
	if err != nil {
		return Report{}, err
	}
	report := Report{
		Buckets:   []Bucket{},
		HasCamera: snapshot.HasCamera,
		HasAlarm:  snapshot.HasAlarm,
	}
	if !snapshot.HasCamera && !snapshot.HasAlarm {
		return report, nil
	}
	report.HasAccess = true
	windowStart := WindowStart(rng, now)

	var (
		wg       sync.WaitGroup
		alerts   []model.Alert
		events   []model.AlarmEvent
		alertErr error
		eventErr error
	)
	if snapshot.HasCamera {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), QueryTimeout)
			defer cancel()
			alertErr = db.WithContext(ctx).
				Where("camera_id = ? AND timestamp >= ?", snapshot.CameraID, windowStart).
				Find(&alerts).Error
		}()
	}
	if snapshot.HasAlarm {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), QueryTimeout)
			defer cancel()
			alarmIds := make([]string, 0, len(snapshot.AlarmIDs))
			for alarmId := range snapshot.AlarmIDs {
				alarmIds = append(alarmIds, alarmId)
			}
			// The panel timestamp is an externally formatted string, so
			// window filtering happens after parsing, not in SQL.
			eventErr = db.WithContext(ctx).
				Where("alarm_id IN ?", alarmIds).
				Find(&events).Error
		}()
	}
	wg.Wait()
	if err := timeoutOr(alertErr, rng, "alert"); err != nil {
		return Report{}, err
	}
	if err := timeoutOr(eventErr, rng, "alarm event"); err != nil {
		return Report{}, err
	}

	buckets := map[string]*Bucket{}
	CountAlerts(buckets, rng, alerts)
	CountAlarmEvents(buckets, rng, events, windowStart)
	report.Buckets = sortBuckets(buckets)
	return report, nil
}

func timeoutOr(err error, rng Range, query string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s query for %s report", ErrTimeout, query, rng)
	}
	return err
}

// WindowStart is the inclusive lower bound of the report window.
func WindowStart(rng Range, now time.Time) time.Time {
	switch rng {
	case RangeWeekly:
		monday := truncateToDate(now).AddDate(0, 0, -(int(now.Weekday())+6)%7)
		return monday.AddDate(0, 0, -7*(weeklyWindowWeeks-1))
	case RangeMonthly:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).
			AddDate(0, -(monthlyWindowMonths - 1), 0)
	default:
		return truncateToDate(now).AddDate(0, 0, -(dailyWindowDays - 1))
	}
}

// BucketLabel maps a point in time to its bucket label:
// daily "2025-01-28", weekly "2025-W05" (ISO-8601), monthly "2025-01".
func BucketLabel(rng Range, t time.Time) string {
	switch rng {
	case RangeWeekly:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	case RangeMonthly:
		return t.Format("2006-01")
	default:
		return t.Format("2006-01-02")
	}
}

func CountAlerts(buckets map[string]*Bucket, rng Range, alerts []model.Alert) {
	for _, alert := range alerts {
		bucket := bucketFor(buckets, BucketLabel(rng, alert.Timestamp))
		if alert.DetectionType == model.DetectionKnife {
			bucket.KnifeAlerts++
		} else {
			bucket.GunAlerts++
		}
	}
}

// CountAlarmEvents drops events whose string timestamp does not parse or
// falls before the window.
func CountAlarmEvents(buckets map[string]*Bucket, rng Range, events []model.AlarmEvent, windowStart time.Time) {
	for _, event := range events {
		t, ok := ParseEventTime(event.Timestamp)
		if !ok || t.Before(windowStart) {
			continue
		}
		bucketFor(buckets, BucketLabel(rng, t)).AlarmAlerts++
	}
}

var eventTimeLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func ParseEventTime(value string) (time.Time, bool) {
	for _, layout := range eventTimeLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func bucketFor(buckets map[string]*Bucket, label string) *Bucket {
	bucket, ok := buckets[label]
	if !ok {
		bucket = &Bucket{Label: label}
		buckets[label] = bucket
	}
	return bucket
}

func sortBuckets(buckets map[string]*Bucket) []Bucket {
	sorted := make([]Bucket, 0, len(buckets))
	for _, bucket := range buckets {
		sorted = append(sorted, *bucket)
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Label < sorted[j].Label
	})
	return sorted
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

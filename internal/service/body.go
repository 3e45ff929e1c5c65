package service

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/saadjs/kcal-planner/internal/model"
	"github.com/saadjs/kcal-planner/internal/planner"
)

type BodyMeasurementInput struct {
	Weight     float64   `json:"weight" validate:"gt=0"`
	Unit       string    `json:"unit"`
	BodyFatPct *float64  `json:"body_fat_pct,omitempty" validate:"omitempty,gt=0,lt=100"`
	MusclePct  *float64  `json:"muscle_pct,omitempty" validate:"omitempty,gt=0,lt=100"`
	WaistCm    *float64  `json:"waist_cm,omitempty" validate:"omitempty,gt=0"`
	HipCm      *float64  `json:"hip_cm,omitempty" validate:"omitempty,gt=0"`
	ChestCm    *float64  `json:"chest_cm,omitempty" validate:"omitempty,gt=0"`
	ArmCm      *float64  `json:"arm_cm,omitempty" validate:"omitempty,gt=0"`
	ThighCm    *float64  `json:"thigh_cm,omitempty" validate:"omitempty,gt=0"`
	MeasuredAt time.Time `json:"measured_at"`
	Notes      string    `json:"notes"`
}

type BodyMeasurementFilter struct {
	FromDate string
	ToDate   string
	Limit    int
}

const measurementColumns = `id, measured_at, weight_kg, body_fat_pct, muscle_pct, waist_cm, hip_cm, chest_cm, arm_cm, thigh_cm, IFNULL(notes, '')`

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// AddBodyMeasurement appends a measurement. Measurements are never updated.
func AddBodyMeasurement(db *sql.DB, in BodyMeasurementInput) (int64, error) {
	return addBodyMeasurement(db, in)
}

func addBodyMeasurement(x execer, in BodyMeasurementInput) (int64, error) {
	if err := validateInput(in); err != nil {
		return 0, err
	}
	weightKg, err := convertWeightToKg(in.Weight, in.Unit)
	if err != nil {
		return 0, err
	}
	if in.MeasuredAt.IsZero() {
		in.MeasuredAt = time.Now()
	}
	res, err := x.Exec(`
INSERT INTO body_measurements(measured_at, weight_kg, body_fat_pct, muscle_pct, waist_cm, hip_cm, chest_cm, arm_cm, thigh_cm, notes)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, in.MeasuredAt.Format(time.RFC3339), weightKg, in.BodyFatPct, in.MusclePct,
		in.WaistCm, in.HipCm, in.ChestCm, in.ArmCm, in.ThighCm, strings.TrimSpace(in.Notes))
	if err != nil {
		return 0, fmt.Errorf("add body measurement: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("resolve body measurement id: %w", err)
	}
	return id, nil
}

func ListBodyMeasurements(db *sql.DB, f BodyMeasurementFilter) ([]model.BodyMeasurement, error) {
	query := `SELECT ` + measurementColumns + ` FROM body_measurements WHERE 1=1`
	args := make([]any, 0)

	if strings.TrimSpace(f.FromDate) != "" {
		from, err := parseDateStart(f.FromDate)
		if err != nil {
			return nil, err
		}
		query += ` AND measured_at >= ?`
		args = append(args, from)
	}
	if strings.TrimSpace(f.ToDate) != "" {
		to, err := parseDateEndExclusive(f.ToDate)
		if err != nil {
			return nil, err
		}
		query += ` AND measured_at < ?`
		args = append(args, to)
	}

	query += ` ORDER BY measured_at DESC, id DESC`
	if f.Limit <= 0 {
		f.Limit = 50
	}
	query += ` LIMIT ?`
	args = append(args, f.Limit)

	return queryMeasurements(db, query, args...)
}

// MeasurementHistory returns every measurement, newest first.
func MeasurementHistory(db *sql.DB) ([]model.BodyMeasurement, error) {
	return queryMeasurements(db, `SELECT `+measurementColumns+` FROM body_measurements ORDER BY measured_at DESC, id DESC`)
}

func queryMeasurements(db *sql.DB, query string, args ...any) ([]model.BodyMeasurement, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list body measurements: %w", err)
	}
	defer rows.Close()

	items := make([]model.BodyMeasurement, 0)
	for rows.Next() {
		var m model.BodyMeasurement
		var measuredAtRaw string
		var bodyFat, muscle, waist, hip, chest, arm, thigh sql.NullFloat64
		if err := rows.Scan(&m.ID, &measuredAtRaw, &m.WeightKg, &bodyFat, &muscle, &waist, &hip, &chest, &arm, &thigh, &m.Notes); err != nil {
			return nil, fmt.Errorf("scan body measurement: %w", err)
		}
		measured, err := parseTimestamp(measuredAtRaw)
		if err != nil {
			return nil, fmt.Errorf("parse measured_at: %w", err)
		}
		m.MeasuredAt = measured
		m.BodyFatPct = nullFloat(bodyFat)
		m.MusclePct = nullFloat(muscle)
		m.WaistCm = nullFloat(waist)
		m.HipCm = nullFloat(hip)
		m.ChestCm = nullFloat(chest)
		m.ArmCm = nullFloat(arm)
		m.ThighCm = nullFloat(thigh)
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate body measurements: %w", err)
	}
	return items, nil
}

func toPlannerMeasurements(items []model.BodyMeasurement) []planner.Measurement {
	out := make([]planner.Measurement, 0, len(items))
	for _, m := range items {
		out = append(out, planner.Measurement{
			MeasuredAt: m.MeasuredAt,
			WeightKg:   m.WeightKg,
			BodyFatPct: m.BodyFatPct,
			MusclePct:  m.MusclePct,
		})
	}
	return out
}

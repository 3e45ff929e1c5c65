package service

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/saadjs/kcal-planner/internal/planner"
)

type BackupInfo struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	CreatedAt time.Time `json:"created_at"`
	SizeBytes int64     `json:"size_bytes"`
}

type DoctorReport struct {
	ActivePlans          int      `json:"active_plans"`
	IncompletePlans      int      `json:"incomplete_plans"`
	MealCountMismatches  int      `json:"meal_count_mismatches"`
	BadQuantities        int      `json:"bad_quantities"`
	DanglingFoodRefs     int      `json:"dangling_food_refs"`
	IncompleteFoods      int      `json:"incomplete_foods"`
	PendingRegenerations int      `json:"pending_regenerations"`
	Problems             []string `json:"problems,omitempty"`
	FixedActivePlans     int      `json:"fixed_active_plans,omitempty"`
}

func CreateBackup(dbPath, outPath string) (BackupInfo, error) {
	if strings.TrimSpace(dbPath) == "" {
		return BackupInfo{}, fmt.Errorf("db path is required")
	}
	if strings.TrimSpace(outPath) == "" {
		return BackupInfo{}, fmt.Errorf("backup output path is required")
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return BackupInfo{}, fmt.Errorf("create backup directory: %w", err)
	}
	if err := copyFile(dbPath, outPath); err != nil {
		return BackupInfo{}, err
	}
	checksum, err := fileSHA256(outPath)
	if err != nil {
		return BackupInfo{}, err
	}
	if err := os.WriteFile(outPath+".sha256", []byte(checksum+"\n"), 0o644); err != nil {
		return BackupInfo{}, fmt.Errorf("write checksum file: %w", err)
	}
	st, err := os.Stat(outPath)
	if err != nil {
		return BackupInfo{}, fmt.Errorf("stat backup: %w", err)
	}
	return BackupInfo{Path: outPath, Checksum: checksum, CreatedAt: st.ModTime(), SizeBytes: st.Size()}, nil
}

func RestoreBackup(backupPath, dbPath string, force bool) error {
	if strings.TrimSpace(backupPath) == "" || strings.TrimSpace(dbPath) == "" {
		return fmt.Errorf("backup path and db path are required")
	}
	if !force {
		if _, err := os.Stat(dbPath); err == nil {
			return fmt.Errorf("target db already exists; use --force to overwrite")
		}
	}
	checksumFile := backupPath + ".sha256"
	if expected, err := os.ReadFile(checksumFile); err == nil {
		actual, err := fileSHA256(backupPath)
		if err != nil {
			return err
		}
		if strings.TrimSpace(string(expected)) != actual {
			return fmt.Errorf("backup checksum mismatch")
		}
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("create db directory: %w", err)
	}
	return copyFile(backupPath, dbPath)
}

func ListBackups(dir string) ([]BackupInfo, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read backup dir: %w", err)
	}
	out := make([]BackupInfo, 0)
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".db") {
			continue
		}
		full := filepath.Join(dir, f.Name())
		st, err := os.Stat(full)
		if err != nil {
			continue
		}
		checksum := ""
		if b, err := os.ReadFile(full + ".sha256"); err == nil {
			checksum = strings.TrimSpace(string(b))
		}
		out = append(out, BackupInfo{Path: full, Checksum: checksum, CreatedAt: st.ModTime(), SizeBytes: st.Size()})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// RunDoctor checks stored plans against the shape the planner produces.
// With fix, extra active plans are superseded so only the newest stays active.
func RunDoctor(db *sql.DB, fix bool) (DoctorReport, error) {
	report := DoctorReport{}
	checks := []struct {
		dest  *int
		query string
		args  []any
		label string
	}{
		{&report.ActivePlans, `SELECT COUNT(1) FROM plans WHERE status = ?`, []any{PlanStatusActive}, "active plans"},
		{&report.IncompletePlans, `
SELECT COUNT(1) FROM plans p
WHERE (SELECT COUNT(1) FROM plan_days d WHERE d.plan_id = p.id) != ?
`, []any{planner.DaysPerWeek}, "plans without 7 days"},
		{&report.MealCountMismatches, `
SELECT COUNT(1) FROM plan_days d JOIN plans p ON p.id = d.plan_id
WHERE (SELECT COUNT(1) FROM plan_meals m WHERE m.plan_day_id = d.id) != p.meals_per_day
`, nil, "days with wrong meal count"},
		{&report.BadQuantities, `
SELECT COUNT(1) FROM plan_allocations
WHERE quantity <= 0
   OR (quantity_unit = 'units' AND quantity != CAST(quantity AS INTEGER))
`, nil, "allocations with invalid quantities"},
		{&report.DanglingFoodRefs, `
SELECT COUNT(1) FROM plan_allocations a
JOIN plan_meals m ON m.id = a.plan_meal_id
JOIN plan_days d ON d.id = m.plan_day_id
JOIN plans p ON p.id = d.plan_id
LEFT JOIN foods f ON f.id = a.food_id
WHERE p.status = 'active' AND f.id IS NULL
`, nil, "active plan allocations referencing deleted foods"},
		{&report.IncompleteFoods, `SELECT COUNT(1) FROM foods WHERE is_complete = 0`, nil, "incomplete foods"},
		{&report.PendingRegenerations, `SELECT COUNT(1) FROM regeneration_requests WHERE consumed_at IS NULL`, nil, "pending regeneration requests"},
	}
	for _, c := range checks {
		if err := db.QueryRow(c.query, c.args...).Scan(c.dest); err != nil {
			return report, fmt.Errorf("doctor %s check: %w", c.label, err)
		}
	}

	if report.ActivePlans > 1 {
		report.Problems = append(report.Problems, fmt.Sprintf("%d active plans (expected at most 1)", report.ActivePlans))
	}
	if report.IncompletePlans > 0 {
		report.Problems = append(report.Problems, fmt.Sprintf("%d plans without %d days", report.IncompletePlans, planner.DaysPerWeek))
	}
	if report.MealCountMismatches > 0 {
		report.Problems = append(report.Problems, fmt.Sprintf("%d days with a meal count different from the plan", report.MealCountMismatches))
	}
	if report.BadQuantities > 0 {
		report.Problems = append(report.Problems, fmt.Sprintf("%d allocations with invalid quantities", report.BadQuantities))
	}
	if report.DanglingFoodRefs > 0 {
		report.Problems = append(report.Problems, fmt.Sprintf("%d active plan allocations reference deleted foods", report.DanglingFoodRefs))
	}

	if fix && report.ActivePlans > 1 {
		res, err := db.Exec(`
UPDATE plans SET status = ?, superseded_at = ?
WHERE status = ? AND id != (SELECT id FROM plans WHERE status = ? ORDER BY created_at DESC, rowid DESC LIMIT 1)
`, PlanStatusSuperseded, time.Now().UTC().Format(time.RFC3339), PlanStatusActive, PlanStatusActive)
		if err != nil {
			return report, fmt.Errorf("doctor fix active plans: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return report, fmt.Errorf("read rows affected: %w", err)
		}
		report.FixedActivePlans = int(n)
	}

	return report, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source file: %w", err)
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create destination file: %w", err)
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy file: %w", err)
	}
	if err := out.Sync(); err != nil {
		return fmt.Errorf("sync destination file: %w", err)
	}
	return nil
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file for checksum: %w", err)
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

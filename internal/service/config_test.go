package service_test

import (
	"strings"
	"testing"

	"github.com/saadjs/kcal-planner/internal/service"
)

func TestConfigSetGetList(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()

	v, ok, err := service.GetConfig(db, service.ConfigAutoRegenerate)
	if err != nil || !ok || v != "false" {
		t.Fatalf("expected seeded auto_regenerate=false, got %q %v %v", v, ok, err)
	}
	if err := service.SetConfig(db, " Tolerance_Pct ", "7.5"); err != nil {
		t.Fatalf("set tolerance: %v", err)
	}
	all, err := service.ListConfig(db)
	if err != nil {
		t.Fatalf("list config: %v", err)
	}
	if all[service.ConfigTolerancePct] != "7.5" || len(all) != 2 {
		t.Fatalf("unexpected config: %v", all)
	}
	if _, ok, err := service.GetConfig(db, service.ConfigPlanSeed); err != nil || ok {
		t.Fatalf("expected plan_seed unset, got %v %v", ok, err)
	}
}

func TestConfigRejectsInvalidValues(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()

	cases := []struct {
		key, value, want string
	}{
		{"colour", "blue", "unknown config key"},
		{service.ConfigAutoRegenerate, "sometimes", "invalid value"},
		{service.ConfigTolerancePct, "0", "invalid value"},
		{service.ConfigTolerancePct, "abc", "invalid value"},
		{service.ConfigPlanSeed, "1.5", "invalid value"},
		{"", "x", "required"},
	}
	for _, tc := range cases {
		err := service.SetConfig(db, tc.key, tc.value)
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("SetConfig(%q, %q): expected %q error, got %v", tc.key, tc.value, tc.want, err)
		}
	}
}

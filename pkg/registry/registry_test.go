package registry

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	neighborhoodinsights "listing-search-workers/internal/workers/insights/neighborhood-insights"
	ranknearbyplaces "listing-search-workers/internal/workers/insights/rank-nearby-places"
	applypropertyfilter "listing-search-workers/internal/workers/search/apply-property-filter"
	managesavedfilters "listing-search-workers/internal/workers/search/manage-saved-filters"
	parsefilterstate "listing-search-workers/internal/workers/search/parse-filter-state"
)

const checkedInRegistry = "../../configs/activity-registry.json"

func validActivity(id string) Activity {
	return Activity{
		ID:                   id,
		TaskType:             id,
		ImplementationStatus: StatusImplemented,
		InputSchema:          map[string]interface{}{"type": "object"},
		Timeout:              "5s",
		Retries:              1,
	}
}

// ==========================
// Checked-in registry
// ==========================

func TestCheckedInRegistry_IsValid(t *testing.T) {
	reg, err := LoadRegistry(checkedInRegistry)
	require.NoError(t, err)
	assert.Empty(t, reg.Validate())
}

func TestCheckedInRegistry_CoversEveryWorker(t *testing.T) {
	reg, err := LoadRegistry(checkedInRegistry)
	require.NoError(t, err)

	missing := reg.Missing(
		parsefilterstate.TaskType,
		applypropertyfilter.TaskType,
		managesavedfilters.TaskType,
		ranknearbyplaces.TaskType,
		neighborhoodinsights.TaskType,
	)
	assert.Empty(t, missing)
}

// ==========================
// Validate
// ==========================

func TestValidate(t *testing.T) {
	noSchema := validActivity("b")
	noSchema.InputSchema = nil

	badSchema := validActivity("b")
	badSchema.InputSchema = map[string]interface{}{"type": 12}

	badTimeout := validActivity("b")
	badTimeout.Timeout = "soon"

	badStatus := validActivity("b")
	badStatus.ImplementationStatus = "maybe"

	dupID := validActivity("b")
	dupID.ID = "a"

	dupTaskType := validActivity("b")
	dupTaskType.TaskType = "a"

	tests := []struct {
		name    string
		second  Activity
		problem string
	}{
		{name: "duplicate id", second: dupID, problem: "a: duplicate id"},
		{name: "duplicate task type", second: dupTaskType, problem: "b: duplicate taskType a"},
		{name: "missing schema", second: noSchema, problem: "b: missing inputSchema"},
		{name: "uncompilable schema", second: badSchema, problem: "b: inputSchema"},
		{name: "bad timeout", second: badTimeout, problem: `b: invalid timeout "soon"`},
		{name: "unknown status", second: badStatus, problem: `b: unknown implementationStatus "maybe"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := &ActivityRegistry{Activities: []Activity{validActivity("a"), tt.second}}
			problems := reg.Validate()
			require.Len(t, problems, 1)
			assert.Contains(t, problems[0], tt.problem)
		})
	}
}

func TestValidate_MissingIdentity(t *testing.T) {
	reg := &ActivityRegistry{Activities: []Activity{{
		ImplementationStatus: StatusPlanned,
		InputSchema:          map[string]interface{}{"type": "object"},
	}}}
	assert.Equal(t, []string{
		"activities[0]: missing id",
		"activities[0]: missing taskType",
	}, reg.Validate())
}

// ==========================
// Save / Find
// ==========================

func TestSave_SortsAndRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	reg := &ActivityRegistry{
		Version:    "1.0.0",
		Activities: []Activity{validActivity("zeta"), validActivity("alpha")},
	}
	require.NoError(t, reg.Save(path))

	loaded, err := LoadRegistry(path)
	require.NoError(t, err)
	require.Len(t, loaded.Activities, 2)
	assert.Equal(t, "alpha", loaded.Activities[0].TaskType)

	a, ok := loaded.Find("zeta")
	require.True(t, ok)
	assert.Equal(t, "5s", a.Timeout)

	_, ok = loaded.Find("missing")
	assert.False(t, ok)
}

func TestLoadRegistry_Errors(t *testing.T) {
	_, err := LoadRegistry(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

// ==========================
// Update
// ==========================

func TestUpdate(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		field   string
		value   string
		wantErr bool
		check   func(t *testing.T, a *Activity)
	}{
		{name: "status", field: "status", value: StatusPlanned, check: func(t *testing.T, a *Activity) {
			assert.Equal(t, StatusPlanned, a.ImplementationStatus)
		}},
		{name: "timeout", field: "timeout", value: "45s", check: func(t *testing.T, a *Activity) {
			assert.Equal(t, "45s", a.Timeout)
		}},
		{name: "retries", field: "retries", value: "4", check: func(t *testing.T, a *Activity) {
			assert.Equal(t, 4, a.Retries)
		}},
		{name: "bad timeout", field: "timeout", value: "later", wantErr: true},
		{name: "negative retries", field: "retries", value: "-1", wantErr: true},
		{name: "unknown field", field: "owner", value: "x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := &ActivityRegistry{Activities: []Activity{validActivity("a")}}
			err := reg.Update("a", tt.field, tt.value, now)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Empty(t, reg.LastUpdated)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "2026-03-14", reg.LastUpdated)
			tt.check(t, &reg.Activities[0])
		})
	}
}

func TestUpdate_UnknownActivity(t *testing.T) {
	reg := &ActivityRegistry{}
	assert.Error(t, reg.Update("nope", "status", StatusPlanned, time.Now()))
}

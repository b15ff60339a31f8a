package matchclinics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dental-claims/internal/common/logger"
	"dental-claims/internal/models"
)

// ==========================
// Mock Catalog
// ==========================

type MockCatalog struct {
	QueryFunc func(ctx context.Context, tier models.PlanTier, specialty string) ([]models.ClinicRecord, error)
}

func (m *MockCatalog) Query(ctx context.Context, tier models.PlanTier, specialty string) ([]models.ClinicRecord, error) {
	return m.QueryFunc(ctx, tier, specialty)
}

func clinic(name string, specialties []string, plans ...models.PlanTier) models.ClinicRecord {
	return models.ClinicRecord{Name: name, Specialties: specialties, AcceptedPlans: plans}
}

func names(clinics []models.ClinicRecord) []string {
	out := make([]string, 0, len(clinics))
	for _, c := range clinics {
		out = append(out, c.Name)
	}
	return out
}

// ==========================
// Matcher
// ==========================

func TestMatcher_Find_StaticCatalog(t *testing.T) {
	m := NewMatcher(NewStaticCatalog(DefaultClinics()), logger.NewTestLogger(t))

	tests := []struct {
		name      string
		tier      models.PlanTier
		specialty string
		want      []string
	}{
		{
			name: "basic general", tier: models.PlanBasic, specialty: "general",
			want: []string{"Healthy Smile Dental Clinic", "Bright Teeth Family Dentistry", "Root Care Endodontics", "Community Dental Care", "Aligned Orthodontics Studio"},
		},
		{
			name: "premium any specialty is capped", tier: models.PlanPremium, specialty: "",
			want: []string{"Healthy Smile Dental Clinic", "Bright Teeth Family Dentistry", "Premier Oral Surgery Center", "Root Care Endodontics", "Gentle Gums Periodontal Clinic"},
		},
		{
			name: "legacy wildcard", tier: models.PlanPremium, specialty: "geral",
			want: []string{"Healthy Smile Dental Clinic", "Bright Teeth Family Dentistry", "Premier Oral Surgery Center", "Root Care Endodontics", "Gentle Gums Periodontal Clinic"},
		},
		{
			name: "specialty filter", tier: models.PlanBasic, specialty: " Orthodontics ",
			want: []string{"Healthy Smile Dental Clinic", "Aligned Orthodontics Studio"},
		},
		{
			name: "premium only specialty on basic plan", tier: models.PlanBasic, specialty: "implants",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Find(context.Background(), "Downtown", tt.tier, tt.specialty)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestMatcher_Find_ReappliesPredicate(t *testing.T) {
	catalog := &MockCatalog{
		QueryFunc: func(_ context.Context, tier models.PlanTier, specialty string) ([]models.ClinicRecord, error) {
			assert.Equal(t, models.PlanBasic, tier)
			assert.Equal(t, "endodontics", specialty)
			return []models.ClinicRecord{
				clinic("premium only", []string{"endodontics"}, models.PlanPremium),
				clinic("wrong specialty", []string{"general"}, models.PlanBasic),
				clinic("match", []string{"endodontics"}, models.PlanBasic),
			}, nil
		},
	}
	m := NewMatcher(catalog, logger.NewTestLogger(t))

	got, err := m.Find(context.Background(), "", models.PlanBasic, "endodontics")

	require.NoError(t, err)
	assert.Equal(t, []string{"match"}, names(got))
}

func TestMatcher_Find_WildcardQueriesWithoutSpecialty(t *testing.T) {
	var queried string
	catalog := &MockCatalog{
		QueryFunc: func(_ context.Context, _ models.PlanTier, specialty string) ([]models.ClinicRecord, error) {
			queried = specialty
			return nil, nil
		},
	}
	m := NewMatcher(catalog, logger.NewTestLogger(t))

	got, err := m.Find(context.Background(), "", models.PlanBasic, "General")

	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, "", queried)
}

func TestMatcher_Find_CatalogError(t *testing.T) {
	catalog := &MockCatalog{
		QueryFunc: func(context.Context, models.PlanTier, string) ([]models.ClinicRecord, error) {
			return nil, errors.New("connection refused")
		},
	}
	m := NewMatcher(catalog, logger.NewTestLogger(t))

	got, err := m.Find(context.Background(), "", models.PlanBasic, "")

	assert.Nil(t, got)
	assert.ErrorIs(t, err, ErrCatalogQueryFailed)
}

// ==========================
// Elasticsearch catalog
// ==========================

func newTestElasticsearch(t *testing.T, handler http.HandlerFunc) *elasticsearch.Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{server.URL}})
	require.NoError(t, err)
	return client
}

func TestElasticsearchCatalog_Query(t *testing.T) {
	var body map[string]interface{}
	client := newTestElasticsearch(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/clinics/_search", r.URL.Path)
		assert.Equal(t, "20", r.URL.Query().Get("size"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		fmt.Fprint(w, `{"hits":{"total":{"value":1},"hits":[{"_source":{
			"name":"Healthy Smile Dental Clinic",
			"address":"123 Main Street",
			"phone":"(11) 3333-4444",
			"specialties":["general","orthodontics"],
			"accepted_plans":["basic","premium"],
			"distance":"1.2 km",
			"catalog_order":1
		}}]}}`)
	})
	catalog := NewElasticsearchCatalog(client, "clinics", 20)

	got, err := catalog.Query(context.Background(), models.PlanBasic, "orthodontics")

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Healthy Smile Dental Clinic", got[0].Name)
	assert.True(t, got[0].Accepts(models.PlanPremium))

	encoded, _ := json.Marshal(body)
	assert.Contains(t, string(encoded), `{"term":{"accepted_plans":"basic"}}`)
	assert.Contains(t, string(encoded), `{"term":{"specialties":"orthodontics"}}`)
	assert.Contains(t, string(encoded), `"catalog_order"`)
}

func TestElasticsearchCatalog_QueryWithoutSpecialty(t *testing.T) {
	client := newTestElasticsearch(t, func(w http.ResponseWriter, r *http.Request) {
		raw := map[string]interface{}{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		encoded, _ := json.Marshal(raw)
		assert.NotContains(t, string(encoded), "specialties")
		fmt.Fprint(w, `{"hits":{"hits":[]}}`)
	})

	got, err := NewElasticsearchCatalog(client, "clinics", 0).Query(context.Background(), models.PlanPremium, "")

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestElasticsearchCatalog_Errors(t *testing.T) {
	client := newTestElasticsearch(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":{"type":"index_not_found_exception"},"status":404}`)
	})

	_, err := NewElasticsearchCatalog(client, "clinics", 10).Query(context.Background(), models.PlanBasic, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "search query failed")

	_, err = NewElasticsearchCatalog(client, "", 10).Query(context.Background(), models.PlanBasic, "")
	assert.ErrorIs(t, err, ErrMissingIndex)
}

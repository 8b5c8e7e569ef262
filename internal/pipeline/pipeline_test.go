package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Leorasaharia/provider-directory/internal/config"
	"github.com/Leorasaharia/provider-directory/internal/model"
	"github.com/Leorasaharia/provider-directory/internal/reconcile"
	"github.com/Leorasaharia/provider-directory/internal/review"
	"github.com/Leorasaharia/provider-directory/internal/store"
)

type registryFunc func(ctx context.Context, npi string) (*model.Observation, error)

func (f registryFunc) Lookup(ctx context.Context, npi string) (*model.Observation, error) {
	return f(ctx, npi)
}

type scraperFunc func(ctx context.Context, siteURL string) (*model.Observation, error)

func (f scraperFunc) Scrape(ctx context.Context, siteURL string) (*model.Observation, error) {
	return f(ctx, siteURL)
}

// memStore records saved reports for assertions.
type memStore struct {
	mu    sync.Mutex
	saved []model.Report
}

func (m *memStore) SaveReport(_ context.Context, r *model.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, *r)
	return nil
}

func (m *memStore) GetReport(context.Context, string) (*model.Report, error) { return nil, nil }
func (m *memStore) ListReports(context.Context, store.ReportFilter) ([]model.Report, error) {
	return nil, nil
}
func (m *memStore) ReviewQueue(context.Context, int) ([]model.Report, error) { return nil, nil }
func (m *memStore) Migrate(context.Context) error                            { return nil }
func (m *memStore) Close() error                                             { return nil }

func testConfig() *config.Config {
	return &config.Config{
		Reconcile: reconcile.DefaultConfig(),
		Review:    review.DefaultConfig(),
		Batch:     config.BatchConfig{MaxConcurrentProviders: 4},
	}
}

func testProvider(npi string) model.ProviderRecord {
	return model.ProviderRecord{
		Name:       "Jon Smith",
		NPI:        npi,
		Phone:      "555-1000",
		Address:    "123 Main St, Springfield",
		Speciality: "Cardiology",
		Impact:     3,
	}
}

func matchingObservation() *model.Observation {
	return &model.Observation{
		Name:       "Jon Smith",
		Phone:      "555-1000",
		Address:    "123 Main St, Springfield",
		Speciality: "Cardiology",
	}
}

func TestRun_BothSourcesConfirm(t *testing.T) {
	t.Parallel()

	st := &memStore{}
	p := New(testConfig(),
		registryFunc(func(_ context.Context, npi string) (*model.Observation, error) {
			assert.Equal(t, "1053395590", npi)
			return matchingObservation(), nil
		}),
		scraperFunc(func(_ context.Context, siteURL string) (*model.Observation, error) {
			assert.Equal(t, "https://example.com/dr-smith", siteURL)
			obs := matchingObservation()
			obs.Name = ""
			return obs, nil
		}),
		st,
		SiteDirectory{"1053395590": "https://example.com/dr-smith"},
	)

	report, err := p.Run(context.Background(), testProvider("1053395590"))
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.Equal(t, model.StatusConfirmed, report.Status)
	assert.NotEmpty(t, report.ID)
	assert.False(t, report.CreatedAt.IsZero())
	assert.NotEmpty(t, report.Explanation)
	assert.Equal(t, 0.97, report.Consolidated.Phone.Confidence)

	require.Len(t, st.saved, 1)
	assert.Equal(t, report.ID, st.saved[0].ID)
}

func TestRun_RegistryFailureDegradesToAbsent(t *testing.T) {
	t.Parallel()

	p := New(testConfig(),
		registryFunc(func(context.Context, string) (*model.Observation, error) {
			return nil, errors.New("connection refused")
		}),
		scraperFunc(func(context.Context, string) (*model.Observation, error) {
			t.Error("no scrape expected without a site mapping")
			return nil, nil
		}),
		nil,
		nil,
	)

	report, err := p.Run(context.Background(), testProvider("1053395590"))
	require.NoError(t, err)

	assert.Equal(t, model.StatusNeedsReview, report.Status)
	assert.Contains(t, report.Reasons, "NPI not found in registry")

	// Missing NPI (5.0) plus four zero-confidence contact fields (2.0 each):
	// risk 13.0, so 0.6*3 + 0.4*13 lands exactly on the high threshold.
	assert.Equal(t, 13.0, report.RiskScore)
	assert.Equal(t, 7.0, report.PriorityScore)
	assert.Equal(t, model.PriorityHigh, report.PriorityLevel)
}

func TestRun_EmptyNPISkipsRegistry(t *testing.T) {
	t.Parallel()

	p := New(testConfig(),
		registryFunc(func(context.Context, string) (*model.Observation, error) {
			t.Error("no registry lookup expected for an empty npi")
			return nil, nil
		}),
		scraperFunc(func(context.Context, string) (*model.Observation, error) {
			return nil, nil
		}),
		nil,
		nil,
	)

	report, err := p.Run(context.Background(), testProvider(""))
	require.NoError(t, err)
	assert.Equal(t, model.StatusNeedsReview, report.Status)
}

func TestRun_NilStoreSkipsPersistence(t *testing.T) {
	t.Parallel()

	p := New(testConfig(),
		registryFunc(func(context.Context, string) (*model.Observation, error) {
			return matchingObservation(), nil
		}),
		scraperFunc(func(context.Context, string) (*model.Observation, error) {
			return nil, nil
		}),
		nil,
		nil,
	)

	report, err := p.Run(context.Background(), testProvider("1053395590"))
	require.NoError(t, err)
	assert.NotNil(t, report)
}

func TestRunBatch_PreservesInputOrder(t *testing.T) {
	t.Parallel()

	p := New(testConfig(),
		registryFunc(func(_ context.Context, npi string) (*model.Observation, error) {
			return matchingObservation(), nil
		}),
		scraperFunc(func(context.Context, string) (*model.Observation, error) {
			return nil, nil
		}),
		nil,
		nil,
	)

	providers := []model.ProviderRecord{
		testProvider("1000000001"),
		testProvider("1000000002"),
		testProvider("1000000003"),
		testProvider("1000000004"),
		testProvider("1000000005"),
	}

	result := p.RunBatch(context.Background(), providers, 3)

	require.Len(t, result.Reports, len(providers))
	for i, r := range result.Reports {
		assert.Equal(t, providers[i].NPI, r.Provider.NPI)
	}
}

func TestRunBatch_PanicIsolatedToOneSlot(t *testing.T) {
	t.Parallel()

	p := New(testConfig(),
		registryFunc(func(context.Context, string) (*model.Observation, error) {
			return matchingObservation(), nil
		}),
		scraperFunc(func(_ context.Context, siteURL string) (*model.Observation, error) {
			panic("scraper exploded")
		}),
		nil,
		SiteDirectory{"1000000002": "https://example.com/broken"},
	)

	providers := []model.ProviderRecord{
		testProvider("1000000001"),
		testProvider("1000000002"),
		testProvider("1000000003"),
	}

	result := p.RunBatch(context.Background(), providers, 2)
	require.Len(t, result.Reports, 3)

	assert.Equal(t, model.StatusConfirmed, result.Reports[0].Status)
	assert.Equal(t, model.StatusConfirmed, result.Reports[2].Status)

	degraded := result.Reports[1]
	assert.Equal(t, model.StatusNeedsReview, degraded.Status)
	assert.Equal(t, model.PriorityHigh, degraded.PriorityLevel)
	require.Len(t, degraded.Reasons, 1)
	assert.Contains(t, degraded.Reasons[0], "processing failed:")
	assert.Contains(t, degraded.Reasons[0], "website scrape panicked: scraper exploded")
	assert.NotEmpty(t, degraded.Explanation)
	assert.NotEmpty(t, degraded.Consolidated.NPI.Note)

	require.Len(t, result.Queue, 1)
	assert.Equal(t, "1000000002", result.Queue[0].Provider.NPI)
}

func TestRunBatch_RegistryPanicIsolated(t *testing.T) {
	t.Parallel()

	p := New(testConfig(),
		registryFunc(func(_ context.Context, npi string) (*model.Observation, error) {
			if npi == "1000000002" {
				panic("boom")
			}
			return matchingObservation(), nil
		}),
		scraperFunc(func(context.Context, string) (*model.Observation, error) {
			return nil, nil
		}),
		nil,
		nil,
	)

	providers := []model.ProviderRecord{
		testProvider("1000000001"),
		testProvider("1000000002"),
		testProvider("1000000003"),
	}

	result := p.RunBatch(context.Background(), providers, 3)
	require.Len(t, result.Reports, 3)

	assert.Equal(t, model.StatusConfirmed, result.Reports[0].Status)
	assert.Equal(t, model.StatusConfirmed, result.Reports[2].Status)

	degraded := result.Reports[1]
	assert.Equal(t, model.StatusNeedsReview, degraded.Status)
	assert.Equal(t, model.PriorityHigh, degraded.PriorityLevel)
	require.Len(t, degraded.Reasons, 1)
	assert.Contains(t, degraded.Reasons[0], "registry lookup panicked: boom")
}

func TestRun_FetchPanicReturnsError(t *testing.T) {
	t.Parallel()

	p := New(testConfig(),
		registryFunc(func(context.Context, string) (*model.Observation, error) {
			panic("boom")
		}),
		scraperFunc(func(context.Context, string) (*model.Observation, error) {
			return nil, nil
		}),
		nil,
		nil,
	)

	report, err := p.Run(context.Background(), testProvider("1053395590"))
	require.Error(t, err)
	assert.Nil(t, report)
	assert.Contains(t, err.Error(), "registry lookup panicked: boom")
}

func TestRunBatch_TruncatesLongErrorReasons(t *testing.T) {
	t.Parallel()

	long := make([]byte, 500)
	for i := range long {
		long[i] = 'x'
	}

	p := New(testConfig(),
		registryFunc(func(context.Context, string) (*model.Observation, error) {
			return nil, nil
		}),
		scraperFunc(func(context.Context, string) (*model.Observation, error) {
			panic(string(long))
		}),
		nil,
		SiteDirectory{"1000000001": "https://example.com/broken"},
	)

	result := p.RunBatch(context.Background(), []model.ProviderRecord{testProvider("1000000001")}, 1)

	require.Len(t, result.Reports, 1)
	reason := result.Reports[0].Reasons[0]
	assert.LessOrEqual(t, len(reason), len("processing failed: ")+maxErrorReasonLen)
}

func TestRunBatch_Empty(t *testing.T) {
	t.Parallel()

	p := New(testConfig(), nil, nil, nil, nil)
	result := p.RunBatch(context.Background(), nil, 0)

	assert.Empty(t, result.Reports)
	assert.Empty(t, result.Queue)
}

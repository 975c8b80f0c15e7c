package gate

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"inkwell/internal/model"
)

func TestEvaluate_Pass(t *testing.T) {
	out := Evaluate(BrandConsistency, &model.VoiceCheckResult{Passed: true, Score: 0.9})
	assert.True(t, out.Passed)
	assert.Empty(t, out.Problems)
	assert.Equal(t, "", out.Error())
	assert.False(t, out.EvaluatedAt.IsZero())
}

func TestEvaluate_Fail(t *testing.T) {
	out := Evaluate(BrandConsistency, &model.VoiceCheckResult{Passed: false, Score: 0.5})
	assert.False(t, out.Passed)
	assert.Len(t, out.Problems, 2)
	assert.Contains(t, out.Error(), "brand_consistency gate failed")
	assert.Contains(t, out.Error(), "0.50")
}

func TestPolicyFor(t *testing.T) {
	assert.Equal(t, PolicyLenient, PolicyFor(false))
	assert.Equal(t, PolicyStrict, PolicyFor(true))
}

func TestMetrics_Record(t *testing.T) {
	m := NewMetrics()
	m.Record(true, 10)
	m.Record(false, 30)

	evals, passes, fails, avg := m.Stats()
	assert.Equal(t, int64(2), evals)
	assert.Equal(t, int64(1), passes)
	assert.Equal(t, int64(1), fails)
	assert.Equal(t, int64(20), avg)
}

func TestMetrics_ConcurrentRecord(t *testing.T) {
	m := NewMetrics()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Record(true, 1)
		}()
	}
	wg.Wait()

	evals, passes, _, _ := m.Stats()
	assert.Equal(t, int64(50), evals)
	assert.Equal(t, int64(50), passes)
}

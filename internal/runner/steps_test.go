package runner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"appcheck/internal/appcontext"
)

func boolPtr(b bool) *bool { return &b }

func newTestRunner() *Runner {
	return New(nil, NewLoader(NewSilentLogger()), NewQuietReporter(""), NewSilentLogger())
}

func TestCheckExpectationsStatus(t *testing.T) {
	r := newTestRunner()
	resp := &appcontext.Response{Status: 200, Body: []byte(`{"page":1}`)}

	ok, _ := r.checkExpectations(Expectation{Status: 200}, resp, nil, nil)
	assert.True(t, ok)

	ok, reason := r.checkExpectations(Expectation{Status: 201}, resp, nil, nil)
	assert.False(t, ok)
	assert.Contains(t, reason, "expected HTTP status 201, got 200")
}

func TestCheckExpectationsImplicitSuccess(t *testing.T) {
	r := newTestRunner()

	// No explicit expectation: 4xx/5xx fail the step.
	ok, reason := r.checkExpectations(Expectation{}, &appcontext.Response{Status: 500}, nil, nil)
	assert.False(t, ok)
	assert.Contains(t, reason, "unexpected HTTP status 500")

	// An explicit status expectation legitimizes an error code.
	ok, _ = r.checkExpectations(Expectation{Status: 404}, &appcontext.Response{Status: 404}, nil, nil)
	assert.True(t, ok)
}

func TestCheckExpectationsExpectedFailure(t *testing.T) {
	r := newTestRunner()

	ok, _ := r.checkExpectations(Expectation{Success: boolPtr(false)}, nil, assert.AnError, nil)
	assert.True(t, ok)

	ok, reason := r.checkExpectations(Expectation{Success: boolPtr(false)}, &appcontext.Response{Status: 200}, nil, nil)
	assert.False(t, ok)
	assert.Contains(t, reason, "expected the step to fail")
}

func TestCheckExpectationsBody(t *testing.T) {
	r := newTestRunner()
	resp := &appcontext.Response{Status: 200, Body: []byte(`{"data":[{"email":"janet.weaver@reqres.in"}]}`)}

	ok, _ := r.checkExpectations(Expectation{BodyContains: []string{"janet.weaver"}}, resp, nil, nil)
	assert.True(t, ok)

	ok, reason := r.checkExpectations(Expectation{BodyContains: []string{"absent"}}, resp, nil, nil)
	assert.False(t, ok)
	assert.Contains(t, reason, `does not contain "absent"`)

	ok, _ = r.checkExpectations(Expectation{BodyNotContains: []string{"janet.weaver"}}, resp, nil, nil)
	assert.False(t, ok)
}

func TestCheckExpectationsJSON(t *testing.T) {
	r := newTestRunner()
	resp := &appcontext.Response{
		Status: 200,
		Body:   []byte(`{"data":{"id":7,"email":"janet.weaver@reqres.in"},"items":[{"name":"first"}]}`),
	}

	ok, _ := r.checkExpectations(Expectation{JSON: map[string]interface{}{
		"data.id":      7,
		"data.email":   "janet.weaver@reqres.in",
		"items.0.name": "first",
	}}, resp, nil, nil)
	assert.True(t, ok)

	ok, reason := r.checkExpectations(Expectation{JSON: map[string]interface{}{"data.id": 8}}, resp, nil, nil)
	assert.False(t, ok)
	assert.Contains(t, reason, `json path "data.id"`)

	ok, reason = r.checkExpectations(Expectation{JSON: map[string]interface{}{"data.missing": 1}}, resp, nil, nil)
	assert.False(t, ok)
	assert.Contains(t, reason, "not found")
}

func TestCheckExpectationsErrorContains(t *testing.T) {
	r := newTestRunner()

	ok, _ := r.checkExpectations(Expectation{
		Success:       boolPtr(false),
		ErrorContains: []string{"assert.AnError"},
	}, nil, assert.AnError, nil)
	assert.True(t, ok)

	ok, reason := r.checkExpectations(Expectation{
		Success:       boolPtr(false),
		ErrorContains: []string{"timeout"},
	}, nil, assert.AnError, nil)
	assert.False(t, ok)
	assert.Contains(t, reason, "does not contain")
}

func TestJSONLookup(t *testing.T) {
	value := map[string]interface{}{
		"data": map[string]interface{}{
			"users": []interface{}{
				map[string]interface{}{"id": float64(1)},
				map[string]interface{}{"id": float64(2)},
			},
		},
	}

	got, found := jsonLookup(value, "data.users.1.id")
	require.True(t, found)
	assert.Equal(t, float64(2), got)

	_, found = jsonLookup(value, "data.users.5.id")
	assert.False(t, found)

	_, found = jsonLookup(value, "data.missing")
	assert.False(t, found)
}

func TestArgDuration(t *testing.T) {
	d, err := argDuration(map[string]interface{}{"duration": "250ms"}, "duration")
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, d)

	d, err = argDuration(map[string]interface{}{"duration": 500}, "duration")
	require.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, d)

	d, err = argDuration(map[string]interface{}{}, "duration")
	require.NoError(t, err)
	assert.Zero(t, d)

	_, err = argDuration(map[string]interface{}{"duration": "soon"}, "duration")
	require.Error(t, err)
}

func TestExpectationIsZero(t *testing.T) {
	assert.True(t, Expectation{}.IsZero())
	assert.False(t, Expectation{Status: 200}.IsZero())
	assert.False(t, Expectation{Success: boolPtr(true)}.IsZero())
}

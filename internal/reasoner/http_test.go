package reasoner

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/foundry/internal/models"
)

func summaryFixture() BlueprintSummary {
	return Summarize(&models.BlueprintModel{
		Name: "archiver",
		Components: []models.Component{
			{ID: "tail", Kind: models.KindSource, Outputs: []models.Port{{Name: "out", Shape: "line"}}},
			{ID: "store", Kind: models.KindSink, Inputs: []models.Port{{Name: "in", Shape: "line"}}},
		},
		Connections: []models.Connection{
			{Source: models.Endpoint{Component: "tail", Port: "out"},
				Sink: models.Endpoint{Component: "store", Port: "in"}},
		},
	})
}

func TestSummarizeIsDeclarationOrdered(t *testing.T) {
	s := summaryFixture()

	require.Len(t, s.Components, 2)
	assert.Equal(t, "tail", s.Components[0].ID)
	assert.Equal(t, []string{"out:line"}, s.Components[0].Outputs)
	require.Len(t, s.Connections, 1)
	assert.Equal(t, "tail.out -> store.in", s.Connections[0])
}

func TestCheckPass(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/check", r.URL.Path)

		var req checkRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "archiver", req.Blueprint.Name)
		assert.Equal(t, "archive log lines", req.Purpose)

		json.NewEncoder(w).Encode(checkResponse{Verdict: "pass", Rationale: "coherent"})
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, 5*time.Second)
	review, err := client.Check(context.Background(), summaryFixture(), "archive log lines")
	require.NoError(t, err)
	assert.True(t, review.Passed)
	assert.Equal(t, "coherent", review.Rationale)
}

func TestCheckFailRequiresRationale(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(checkResponse{Verdict: "fail"})
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, 5*time.Second)
	_, err := client.Check(context.Background(), summaryFixture(), "purpose")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rationale")
}

func TestCheckUnrecognizedVerdictIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(checkResponse{Verdict: "maybe", Rationale: "unsure"})
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, 5*time.Second)
	_, err := client.Check(context.Background(), summaryFixture(), "purpose")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unrecognized verdict")
}

func TestCheckNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, 5*time.Second)
	_, err := client.Check(context.Background(), summaryFixture(), "purpose")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

func TestCheckTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		json.NewEncoder(w).Encode(checkResponse{Verdict: "pass"})
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, 50*time.Millisecond)
	client.client.RetryMax = 0

	_, err := client.Check(context.Background(), summaryFixture(), "purpose")
	assert.Error(t, err)
}

func TestRepairReturnsBlueprint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/repair", r.URL.Path)

		var req repairRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "incoherent purpose", req.Rationale)

		json.NewEncoder(w).Encode(repairResponse{Blueprint: &models.BlueprintModel{
			Name:       "archiver",
			Components: []models.Component{{ID: "tail", Kind: models.KindSource}},
		}})
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, 5*time.Second)
	bp, err := client.Repair(context.Background(), summaryFixture(), "incoherent purpose")
	require.NoError(t, err)
	assert.Equal(t, "archiver", bp.Name)
}

func TestRepairMissingBlueprintIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(repairResponse{})
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, 5*time.Second)
	_, err := client.Repair(context.Background(), summaryFixture(), "rationale")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing blueprint")
}

func TestRepairEmptyComponentsIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(repairResponse{Blueprint: &models.BlueprintModel{Name: "empty"}})
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, 5*time.Second)
	_, err := client.Repair(context.Background(), summaryFixture(), "rationale")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no components")
}

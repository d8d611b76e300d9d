package main

import (
	"bytes"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bren2010/esa/accumulator"
	"github.com/Bren2010/esa/crypto/group"
	"github.com/Bren2010/esa/crypto/suites"
	"github.com/Bren2010/esa/db/memory"
)

var testModulus, _ = new(big.Int).SetString("fffffffffffffa43", 16)

type testServer struct {
	router *mux.Router
	acc    *accumulator.Accumulator
	store  *memory.AccumulatorStore
}

func newTestServer(t *testing.T, elems ...string) *testServer {
	params, err := group.NewParams(testModulus, nil)
	require.NoError(t, err)
	acc := accumulator.New(suites.Default(), params)
	store := memory.NewAccumulatorStore()
	require.NoError(t, acc.Persist(store))

	ch := make(chan MutationRequest)
	go mutator(acc, store, ch)
	t.Cleanup(func() { close(ch) })

	ts := &testServer{router: newRouter(&Handler{acc: acc, ch: ch}), acc: acc, store: store}
	for _, e := range elems {
		code := ts.do(t, "POST", "/v1/elements", ElementsRequest{Element: e}, nil)
		require.Equal(t, http.StatusOK, code)
	}
	return ts
}

// do sends a request with `body` encoded as JSON and decodes the response into
// `out`, if it is not nil. It returns the status code.
func (ts *testServer) do(t *testing.T, method, path string, body, out interface{}) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)

	if out != nil && rec.Code == http.StatusOK {
		require.NoError(t, json.NewDecoder(rec.Body).Decode(out))
	}
	return rec.Code
}

func TestMeta(t *testing.T) {
	ts := newTestServer(t, "3", "5")

	var meta MetaResponse
	require.Equal(t, http.StatusOK, ts.do(t, "GET", "/v1/meta", nil, &meta))
	assert.Equal(t, "sha256", meta.Suite)
	assert.Equal(t, "fffffffffffffa43", meta.Modulus)
	assert.Equal(t, "2", meta.Generator)
	assert.Equal(t, "256", meta.Value)
	assert.Equal(t, 2, meta.Size)
}

func TestElementsAPI(t *testing.T) {
	ts := newTestServer(t, "3", "5")

	assert.Equal(t, http.StatusConflict, ts.do(t, "POST", "/v1/elements", ElementsRequest{Element: "3"}, nil))
	assert.Equal(t, http.StatusBadRequest, ts.do(t, "POST", "/v1/elements", ElementsRequest{Element: "abc"}, nil))
	assert.Equal(t, http.StatusBadRequest, ts.do(t, "POST", "/v1/elements", ElementsRequest{Element: "-1"}, nil))

	var elem ElementResponse
	require.Equal(t, http.StatusOK, ts.do(t, "GET", "/v1/elements/3", nil, &elem))
	assert.True(t, elem.Member)
	require.Equal(t, http.StatusOK, ts.do(t, "GET", "/v1/elements/4", nil, &elem))
	assert.False(t, elem.Member)

	var value ValueResponse
	require.Equal(t, http.StatusOK, ts.do(t, "PUT", "/v1/elements/3", ElementsRequest{Element: "7"}, &value))
	assert.Equal(t, ts.acc.Value().Value().String(), value.Value)
	assert.Equal(t, http.StatusNotFound, ts.do(t, "PUT", "/v1/elements/3", ElementsRequest{Element: "8"}, nil))

	assert.Equal(t, http.StatusNotFound, ts.do(t, "DELETE", "/v1/elements/9", nil, nil))
	require.Equal(t, http.StatusOK, ts.do(t, "DELETE", "/v1/elements/5", nil, nil))

	var list ElementsResponse
	require.Equal(t, http.StatusOK, ts.do(t, "GET", "/v1/elements", nil, &list))
	assert.Equal(t, []string{"7"}, list.Elements)

	// Every mutation is written through to the store.
	assert.Len(t, ts.store.Elements, 1)
	restored, err := accumulator.Restore(ts.store)
	require.NoError(t, err)
	assert.True(t, restored.Value().Equal(ts.acc.Value()))
}

func TestWitnessAPI(t *testing.T) {
	ts := newTestServer(t, "3", "5", "11")

	var res WitnessResponse
	require.Equal(t, http.StatusOK, ts.do(t, "GET", "/v1/elements/5/witness", nil, &res))
	w, ok := new(big.Int).SetString(res.Witness, 10)
	require.True(t, ok)
	assert.True(t, ts.acc.VerifyWitness(group.NewElement(w, testModulus), big.NewInt(5)))

	assert.Equal(t, http.StatusNotFound, ts.do(t, "GET", "/v1/elements/4/witness", nil, nil))
}

func TestProofAPI(t *testing.T) {
	ts := newTestServer(t, "3", "5", "11")

	testCases := []struct {
		kind string
		body ElementsRequest
	}{
		{"membership", ElementsRequest{Element: "5"}},
		{"non-membership", ElementsRequest{Element: "4"}},
		{"subset", ElementsRequest{Elements: []string{"11", "3"}}},
		{"batch-membership", ElementsRequest{Elements: []string{"3", "5"}}},
	}
	for _, tc := range testCases {
		t.Run(tc.kind, func(t *testing.T) {
			var proof ProofResponse
			require.Equal(t, http.StatusOK, ts.do(t, "POST", "/v1/proofs/"+tc.kind, tc.body, &proof))
			require.True(t, proof.Valid)

			var verify VerifyResponse
			req := VerifyRequest{ElementsRequest: tc.body, Proof: proof.Proof}
			require.Equal(t, http.StatusOK, ts.do(t, "POST", "/v1/verify", req, &verify))
			assert.True(t, verify.Valid)

			req.ElementsRequest = ElementsRequest{Element: "6", Elements: []string{"6"}}
			require.Equal(t, http.StatusOK, ts.do(t, "POST", "/v1/verify", req, &verify))
			assert.False(t, verify.Valid)
		})
	}

	var proof ProofResponse
	require.Equal(t, http.StatusOK, ts.do(t, "POST", "/v1/proofs/membership", ElementsRequest{Element: "4"}, &proof))
	assert.False(t, proof.Valid)

	assert.Equal(t, http.StatusNotFound, ts.do(t, "POST", "/v1/proofs/bogus", ElementsRequest{Element: "4"}, nil))
	assert.Equal(t, http.StatusBadRequest, ts.do(t, "POST", "/v1/proofs/union", ElementsRequest{Element: "4"}, nil))
	assert.Equal(t, http.StatusBadRequest, ts.do(t, "POST", "/v1/proofs/membership", ElementsRequest{}, nil))
	assert.Equal(t, http.StatusBadRequest, ts.do(t, "POST", "/v1/verify", VerifyRequest{Proof: "zz"}, nil))
}

func TestSetOperationAPI(t *testing.T) {
	ts := newTestServer(t, "1", "2", "3")

	var res SetOperationResponse
	body := ElementsRequest{Elements: []string{"2", "3", "4"}}
	require.Equal(t, http.StatusOK, ts.do(t, "POST", "/v1/set/union", body, &res))
	assert.True(t, res.Valid)
	assert.Equal(t, []string{"1", "2", "3", "4"}, res.ResultSet)

	var verify VerifyResponse
	require.Equal(t, http.StatusOK, ts.do(t, "POST", "/v1/verify", VerifyRequest{Result: res.Result}, &verify))
	assert.True(t, verify.Valid)

	require.Equal(t, http.StatusOK, ts.do(t, "POST", "/v1/set/complement", body, &res))
	assert.Equal(t, []string{"1"}, res.ResultSet)

	// The result no longer verifies once the set changes.
	require.Equal(t, http.StatusOK, ts.do(t, "POST", "/v1/elements", ElementsRequest{Element: "9"}, nil))
	require.Equal(t, http.StatusOK, ts.do(t, "POST", "/v1/verify", VerifyRequest{Result: res.Result}, &verify))
	assert.False(t, verify.Valid)

	assert.Equal(t, http.StatusNotFound, ts.do(t, "POST", "/v1/set/membership", body, nil))
}

func TestHome(t *testing.T) {
	h := &Handler{homeRedirect: "https://example.com/docs"}
	rec := httptest.NewRecorder()
	newRouter(h).ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "https://example.com/docs", rec.Header().Get("Location"))
}

package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/Bren2010/esa/accumulator"
	"github.com/Bren2010/esa/accumulator/structs"
	"github.com/Bren2010/esa/crypto/group"
)

const maxBodySize = 1 << 20

// httpError is an error with the status code it should be reported with.
type httpError struct {
	status int
	err    error
}

func (e *httpError) Error() string { return e.err.Error() }

func badRequest(format string, args ...interface{}) error {
	return &httpError{http.StatusBadRequest, errors.Errorf(format, args...)}
}

func statusOf(err error) int {
	var herr *httpError
	switch {
	case errors.As(err, &herr):
		return herr.status
	case errors.Is(err, accumulator.ErrDuplicateElement):
		return http.StatusConflict
	case errors.Is(err, accumulator.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, accumulator.ErrInvalidElement):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

type apiFunc func(req *http.Request) (interface{}, error)

// HandleAPI wraps an API endpoint with JSON encoding of its response, error
// reporting, and request metrics.
func HandleAPI(fn apiFunc) http.HandlerFunc {
	return func(rw http.ResponseWriter, req *http.Request) {
		path := req.URL.Path
		if route := mux.CurrentRoute(req); route != nil {
			if tmpl, err := route.GetPathTemplate(); err == nil {
				path = tmpl
			}
		}
		req.Body = http.MaxBytesReader(rw, req.Body, maxBodySize)

		res, err := fn(req)
		status := http.StatusOK
		if err != nil {
			status = statusOf(err)
			if status == http.StatusInternalServerError {
				log.WithField("path", path).Warnf("Request failed: %v", err)
			}
			res = ErrorResponse{Error: err.Error()}
		}
		requestCtr.WithLabelValues(path, fmt.Sprint(status)).Inc()

		rw.Header().Set("Content-Type", "application/json")
		rw.WriteHeader(status)
		if err := json.NewEncoder(rw).Encode(res); err != nil {
			log.Warn(err)
		}
	}
}

type Handler struct {
	homeRedirect string
	acc          *accumulator.Accumulator
	ch           chan<- MutationRequest
}

func newRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", h.Home)
	r.HandleFunc("/v1/meta", HandleAPI(h.Meta)).Methods("GET")
	r.HandleFunc("/v1/elements", HandleAPI(h.ListElements)).Methods("GET")
	r.HandleFunc("/v1/elements", HandleAPI(h.AddElement)).Methods("POST")
	r.HandleFunc("/v1/elements/{element:[0-9]+}", HandleAPI(h.GetElement)).Methods("GET")
	r.HandleFunc("/v1/elements/{element:[0-9]+}", HandleAPI(h.ReplaceElement)).Methods("PUT")
	r.HandleFunc("/v1/elements/{element:[0-9]+}", HandleAPI(h.RemoveElement)).Methods("DELETE")
	r.HandleFunc("/v1/elements/{element:[0-9]+}/witness", HandleAPI(h.Witness)).Methods("GET")
	r.HandleFunc("/v1/proofs/{kind}", HandleAPI(h.Prove)).Methods("POST")
	r.HandleFunc("/v1/set/{op}", HandleAPI(h.SetOperation)).Methods("POST")
	r.HandleFunc("/v1/verify", HandleAPI(h.Verify)).Methods("POST")
	return r
}

// Home redirects requests to a pre-configured URL, like the API documentation.
func (h *Handler) Home(rw http.ResponseWriter, req *http.Request) {
	if h.homeRedirect == "" {
		http.NotFound(rw, req)
		return
	}
	http.Redirect(rw, req, h.homeRedirect, http.StatusSeeOther)
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type ElementsRequest struct {
	Element  string   `json:"element,omitempty"`
	Elements []string `json:"elements,omitempty"`
}

type VerifyRequest struct {
	ElementsRequest
	Proof  string `json:"proof,omitempty"`  // Hex-encoded proof.
	Result string `json:"result,omitempty"` // Hex-encoded set operation result.
}

type MetaResponse struct {
	Suite     string `json:"suite"`
	Modulus   string `json:"modulus"`
	Generator string `json:"generator"`
	Value     string `json:"value"`
	Size      int    `json:"size"`
}

type ValueResponse struct {
	Value string `json:"value"`
}

type ElementsResponse struct {
	Elements []string `json:"elements"`
}

type ElementResponse struct {
	Element string `json:"element"`
	Member  bool   `json:"member"`
}

type WitnessResponse struct {
	Element string `json:"element"`
	Witness string `json:"witness"`
	Value   string `json:"value"`
}

type ProofResponse struct {
	Proof string `json:"proof"`
	Valid bool   `json:"valid"`
}

type SetOperationResponse struct {
	ResultSet []string `json:"result_set"`
	Result    string   `json:"result"`
	Valid     bool     `json:"valid"`
}

type VerifyResponse struct {
	Valid bool `json:"valid"`
}

func decodeBody(req *http.Request, out interface{}) error {
	if err := json.NewDecoder(req.Body).Decode(out); err != nil {
		return badRequest("failed to parse request body: %v", err)
	}
	return nil
}

func parseElement(s string) (*big.Int, error) {
	e, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, badRequest("element is not a decimal integer: %q", s)
	} else if e.Sign() < 0 {
		return nil, accumulator.ErrInvalidElement
	}
	return e, nil
}

func parseElements(strs []string) ([]*big.Int, error) {
	out := make([]*big.Int, len(strs))
	for i, s := range strs {
		e, err := parseElement(s)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

func formatElements(elems []*big.Int) []string {
	out := make([]string, len(elems))
	for i, e := range elems {
		out[i] = e.String()
	}
	return out
}

func formatValue(e group.Element) string { return e.Value().String() }

// statementFor builds the statement a proof of the given kind is about from
// the elements in a request.
func statementFor(kind structs.ProofKind, body ElementsRequest) (accumulator.Statement, error) {
	switch kind {
	case structs.Membership, structs.NonMembership:
		if body.Element == "" {
			return nil, badRequest("field not provided: element")
		}
		e, err := parseElement(body.Element)
		if err != nil {
			return nil, err
		} else if kind == structs.Membership {
			return accumulator.Membership{Element: e}, nil
		}
		return accumulator.NonMembership{Element: e}, nil

	case structs.Subset, structs.BatchMembership:
		elems, err := parseElements(body.Elements)
		if err != nil {
			return nil, err
		} else if kind == structs.Subset {
			return accumulator.Subset{Elements: elems}, nil
		}
		return accumulator.BatchMembership{Elements: elems}, nil

	default:
		return nil, badRequest("unsupported proof kind: %v", kind)
	}
}

func (h *Handler) mutate(req *http.Request, mreq MutationRequest) (interface{}, error) {
	resp := make(chan MutationResponse, 1)
	mreq.Resp = resp

	select {
	case h.ch <- mreq:
	case <-req.Context().Done():
		return nil, req.Context().Err()
	}
	select {
	case res := <-resp:
		if res.Err != nil {
			return nil, res.Err
		}
		return ValueResponse{Value: formatValue(res.Value)}, nil
	case <-req.Context().Done():
		return nil, req.Context().Err()
	}
}

func (h *Handler) Meta(req *http.Request) (interface{}, error) {
	params := h.acc.Params()
	return MetaResponse{
		Suite:     h.acc.Suite().Name(),
		Modulus:   params.Modulus.Text(16),
		Generator: params.Generator.Value().Text(16),
		Value:     formatValue(h.acc.Value()),
		Size:      h.acc.Size(),
	}, nil
}

func (h *Handler) ListElements(req *http.Request) (interface{}, error) {
	return ElementsResponse{Elements: formatElements(h.acc.Elements())}, nil
}

func (h *Handler) AddElement(req *http.Request) (interface{}, error) {
	var body ElementsRequest
	if err := decodeBody(req, &body); err != nil {
		return nil, err
	}
	e, err := parseElement(body.Element)
	if err != nil {
		return nil, err
	}
	return h.mutate(req, MutationRequest{Op: OpAdd, Element: e})
}

func (h *Handler) GetElement(req *http.Request) (interface{}, error) {
	e, err := parseElement(mux.Vars(req)["element"])
	if err != nil {
		return nil, err
	}
	return ElementResponse{Element: e.String(), Member: h.acc.Contains(e)}, nil
}

func (h *Handler) ReplaceElement(req *http.Request) (interface{}, error) {
	old, err := parseElement(mux.Vars(req)["element"])
	if err != nil {
		return nil, err
	}
	var body ElementsRequest
	if err := decodeBody(req, &body); err != nil {
		return nil, err
	}
	repl, err := parseElement(body.Element)
	if err != nil {
		return nil, err
	}
	return h.mutate(req, MutationRequest{Op: OpReplace, Element: old, Replacement: repl})
}

func (h *Handler) RemoveElement(req *http.Request) (interface{}, error) {
	e, err := parseElement(mux.Vars(req)["element"])
	if err != nil {
		return nil, err
	}
	return h.mutate(req, MutationRequest{Op: OpRemove, Element: e})
}

func (h *Handler) Witness(req *http.Request) (interface{}, error) {
	e, err := parseElement(mux.Vars(req)["element"])
	if err != nil {
		return nil, err
	}
	w, err := h.acc.GenerateWitness(e)
	if err != nil {
		return nil, err
	}
	return WitnessResponse{
		Element: e.String(),
		Witness: formatValue(w),
		Value:   formatValue(h.acc.Value()),
	}, nil
}

func (h *Handler) Prove(req *http.Request) (interface{}, error) {
	kind, err := structs.ParseProofKind(mux.Vars(req)["kind"])
	if err != nil {
		return nil, &httpError{http.StatusNotFound, err}
	}
	var body ElementsRequest
	if err := decodeBody(req, &body); err != nil {
		return nil, err
	}
	stmt, err := statementFor(kind, body)
	if err != nil {
		return nil, err
	}

	proof := h.acc.Prove(stmt)
	proofOps.WithLabelValues(kind.String(), fmt.Sprint(proof.Valid)).Inc()
	raw, err := structs.Marshal(proof.Public())
	if err != nil {
		return nil, err
	}
	return ProofResponse{Proof: hex.EncodeToString(raw), Valid: proof.Valid}, nil
}

func (h *Handler) SetOperation(req *http.Request) (interface{}, error) {
	op, err := structs.ParseProofKind(mux.Vars(req)["op"])
	if err != nil || !op.IsSetOperation() {
		return nil, &httpError{http.StatusNotFound, errors.Errorf("unknown set operation: %q", mux.Vars(req)["op"])}
	}
	var body ElementsRequest
	if err := decodeBody(req, &body); err != nil {
		return nil, err
	}
	other, err := parseElements(body.Elements)
	if err != nil {
		return nil, err
	}

	var res *structs.SetOperationResult
	switch op {
	case structs.Union:
		res = h.acc.Union(other)
	case structs.Intersection:
		res = h.acc.Intersection(other)
	case structs.Difference:
		res = h.acc.Difference(other)
	case structs.Complement:
		res = h.acc.Complement(other)
	}
	proofOps.WithLabelValues(op.String(), fmt.Sprint(res.Valid)).Inc()

	public := &structs.SetOperationResult{ResultSet: res.ResultSet, Proof: res.Proof.Public(), Valid: res.Valid}
	raw, err := structs.Marshal(public)
	if err != nil {
		return nil, err
	}
	return SetOperationResponse{
		ResultSet: formatElements(res.ResultSet),
		Result:    hex.EncodeToString(raw),
		Valid:     res.Valid,
	}, nil
}

func (h *Handler) Verify(req *http.Request) (interface{}, error) {
	var body VerifyRequest
	if err := decodeBody(req, &body); err != nil {
		return nil, err
	}

	if body.Result != "" {
		raw, err := hex.DecodeString(body.Result)
		if err != nil {
			return nil, badRequest("failed to decode result: %v", err)
		}
		res, err := structs.ParseSetOperationResult(raw)
		if err != nil {
			return nil, badRequest("failed to parse result: %v", err)
		}
		valid := h.acc.VerifySetOperationStrict(res)
		verifyOps.WithLabelValues(res.Proof.Kind.String(), fmt.Sprint(valid)).Inc()
		return VerifyResponse{Valid: valid}, nil
	}

	if body.Proof == "" {
		return nil, badRequest("field not provided: proof")
	}
	raw, err := hex.DecodeString(body.Proof)
	if err != nil {
		return nil, badRequest("failed to decode proof: %v", err)
	}
	proof, err := structs.ParseProof(raw)
	if err != nil {
		return nil, badRequest("failed to parse proof: %v", err)
	}
	stmt, err := statementFor(proof.Kind, body.ElementsRequest)
	if err != nil {
		return nil, err
	}
	valid := h.acc.Verifier().Verify(proof, stmt)
	verifyOps.WithLabelValues(proof.Kind.String(), fmt.Sprint(valid)).Inc()
	return VerifyResponse{Valid: valid}, nil
}

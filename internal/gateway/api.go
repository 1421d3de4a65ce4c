// ABOUTME: HTTP API handlers for connect/disconnect and resource CRUD plus find
// ABOUTME: Enforces error precedence: session before resource before operation failures

package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strconv"

	"github.com/2389/vault-gateway/internal/auth"
	"github.com/2389/vault-gateway/internal/query"
	"github.com/2389/vault-gateway/internal/schema"
	"github.com/2389/vault-gateway/internal/session"
	"github.com/2389/vault-gateway/internal/store"
)

// apiVersion identifies the wire protocol revision.
const apiVersion = "0.1.0"

// StoreVersion reports the vault store release the gateway is built
// against. Set by the release pipeline; "embedded" means the bundled local
// store.
var StoreVersion = "embedded"

// Error classification tags carried in the error envelope.
const (
	classAuthentication = "AuthenticationError"
	classNotFound       = "NotFoundError"
	classValidation     = "ValidationError"
	classStore          = "StoreError"
	classAuth           = "AuthError"
)

// ConnectRequest is the JSON request body for POST /_connect.
// Host and port default to the server-configured store address.
type ConnectRequest struct {
	Username   string `json:"username"`
	Passphrase string `json:"passphrase"`
	Host       string `json:"host,omitempty"`
	Port       int    `json:"port,omitempty"`
}

// FindRequest is the JSON request body for /{resource}/_find.
type FindRequest struct {
	Criteria json.RawMessage `json:"criteria,omitempty"`
	Skip     *int            `json:"skip,omitempty"`
	Limit    *int            `json:"limit,omitempty"`
	Sort     json.RawMessage `json:"sort,omitempty"`
}

// VersionResponse is the JSON response for GET /_version.
type VersionResponse struct {
	APIVersion     string `json:"api_version"`
	StoreVersion   string `json:"store_version"`
	RuntimeVersion string `json:"runtime_version"`
}

// ResultEnvelope is the JSON response for find: one page of serialized
// objects and its count. Count always equals len(Objects), never the
// unbounded match total.
type ResultEnvelope struct {
	Objects []map[string]any `json:"objects"`
	Count   int              `json:"count"`
}

// handleVersion handles GET /_version.
// It requires no session: version info is public.
func (g *Gateway) handleVersion(w http.ResponseWriter, r *http.Request) {
	g.sendJSON(w, http.StatusOK, VersionResponse{
		APIVersion:     apiVersion,
		StoreVersion:   StoreVersion,
		RuntimeVersion: runtime.Version(),
	})
}

// handleConnect handles POST /_connect.
// On success the session credential is issued as a cookie and the response
// is an empty 204. Authentication failures surface the store's reason.
func (g *Gateway) handleConnect(w http.ResponseWriter, r *http.Request) {
	var req ConnectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		g.sendError(w, http.StatusBadRequest, "invalid JSON body", classValidation)
		return
	}

	if req.Username == "" || req.Passphrase == "" {
		g.sendError(w, http.StatusBadRequest, "incomplete login information", classValidation)
		return
	}

	addr := g.config.DefaultStoreAddr()
	if req.Host != "" {
		port := req.Port
		if port == 0 {
			port = g.config.Store.Port
		}
		addr = fmt.Sprintf("%s:%d", req.Host, port)
	}

	sess, err := g.registry.Connect(r.Context(), req.Username, req.Passphrase, addr)
	if err != nil {
		var authErr *store.AuthError
		if errors.As(err, &authErr) {
			g.sendError(w, http.StatusBadRequest, authErr.Reason, classAuth)
			return
		}
		g.logger.Error("store connect failed", "error", err, "addr", addr)
		g.sendError(w, http.StatusBadRequest, err.Error(), classStore)
		return
	}

	credential, err := g.verifier.Generate(sess.ID, g.config.Auth.SessionTTL)
	if err != nil {
		// Credential issuance failing is a server fault; undo the connect.
		g.registry.Disconnect(sess.ID)
		g.logger.Error("generating session credential", "error", err)
		g.sendError(w, http.StatusInternalServerError, "internal server error", classStore)
		return
	}

	auth.SetCredential(w, credential, g.config.Auth.SessionTTL)
	w.WriteHeader(http.StatusNoContent)
}

// handleDisconnect handles POST /_disconnect.
// Idempotent: an unknown or already-closed credential still yields 204.
func (g *Gateway) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	if credential, ok := auth.Credential(r); ok {
		if sessionID, err := g.verifier.Verify(credential); err == nil {
			g.registry.Disconnect(sessionID)
		}
	}

	auth.ClearCredential(w)
	w.WriteHeader(http.StatusNoContent)
}

// authenticate resolves the request's credential to a live session.
// A missing credential, a bad signature, and a disconnected session are
// indistinguishable: all report "not authenticated".
func (g *Gateway) authenticate(r *http.Request) (*session.Session, bool) {
	credential, ok := auth.Credential(r)
	if !ok {
		return nil, false
	}

	sessionID, err := g.verifier.Verify(credential)
	if err != nil {
		return nil, false
	}

	return g.registry.Resolve(sessionID)
}

// resolve runs the two gatekeeping checks shared by every data operation,
// in their fixed order: session first (403), then resource (404). Both must
// pass before any side-effecting operation begins.
func (g *Gateway) resolve(w http.ResponseWriter, r *http.Request) (*session.Session, *schema.Schema, bool) {
	sess, ok := g.authenticate(r)
	if !ok {
		g.sendError(w, http.StatusForbidden, "not authenticated", classAuthentication)
		return nil, nil, false
	}

	name := r.PathValue("resource")
	sc, err := g.resolver.Resolve(name)
	if err != nil {
		g.sendError(w, http.StatusNotFound, fmt.Sprintf("unknown resource %q", name), classNotFound)
		return nil, nil, false
	}

	return sess, sc, true
}

// handleGet handles GET /{resource}/{id}.
func (g *Gateway) handleGet(w http.ResponseWriter, r *http.Request) {
	sess, sc, ok := g.resolve(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")

	var obj *store.Object
	err := sess.Do(func(conn store.Conn) error {
		var err error
		obj, err = conn.Get(r.Context(), sc.Name, id)
		return err
	})
	if err != nil {
		g.sendOperationError(w, err, fmt.Sprintf("no object %q in %s", id, sc.Name))
		return
	}

	g.sendJSON(w, http.StatusOK, Serialize(obj))
}

// handleDelete handles DELETE /{resource}/{id}.
// Deleting an absent id is 404, matching the store's remove semantics,
// rather than an idempotent success.
func (g *Gateway) handleDelete(w http.ResponseWriter, r *http.Request) {
	sess, sc, ok := g.resolve(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")

	err := sess.Do(func(conn store.Conn) error {
		return conn.Delete(r.Context(), sc.Name, id)
	})
	if err != nil {
		g.sendOperationError(w, err, fmt.Sprintf("no object %q in %s", id, sc.Name))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleInsert handles POST /{resource}.
// The body's fields are coerced through the resource schema before the
// store sees them; construction and store failures are client errors.
func (g *Gateway) handleInsert(w http.ResponseWriter, r *http.Request) {
	sess, sc, ok := g.resolve(w, r)
	if !ok {
		return
	}

	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		g.sendError(w, http.StatusBadRequest, "invalid JSON body", classValidation)
		return
	}

	fields, err := sc.Coerce(body)
	if err != nil {
		g.sendError(w, http.StatusBadRequest, err.Error(), classValidation)
		return
	}

	var id string
	err = sess.Do(func(conn store.Conn) error {
		var err error
		id, err = conn.Insert(r.Context(), sc.Name, fields)
		return err
	})
	if err != nil {
		if errors.Is(err, store.ErrConnClosed) {
			g.sendError(w, http.StatusForbidden, "not authenticated", classAuthentication)
			return
		}
		g.sendError(w, http.StatusBadRequest, err.Error(), classStore)
		return
	}

	g.sendJSON(w, http.StatusOK, map[string]string{"$oid": id})
}

// handleFind handles GET and POST /{resource}/_find.
// Criteria are compiled and optimized here; the store collaborator executes
// the resulting plan.
func (g *Gateway) handleFind(w http.ResponseWriter, r *http.Request) {
	sess, sc, ok := g.resolve(w, r)
	if !ok {
		return
	}

	req, err := parseFindRequest(r)
	if err != nil {
		g.sendError(w, http.StatusBadRequest, err.Error(), classValidation)
		return
	}

	spec, err := buildQuerySpec(req)
	if err != nil {
		g.sendError(w, http.StatusBadRequest, err.Error(), classValidation)
		return
	}

	var objects []*store.Object
	err = sess.Do(func(conn store.Conn) error {
		var err error
		objects, err = conn.Find(r.Context(), sc.Name, spec)
		return err
	})
	if err != nil {
		if errors.Is(err, store.ErrConnClosed) {
			g.sendError(w, http.StatusForbidden, "not authenticated", classAuthentication)
			return
		}
		g.logger.Error("find failed", "error", err, "resource", sc.Name)
		g.sendError(w, http.StatusInternalServerError, "internal server error", classStore)
		return
	}

	envelope := ResultEnvelope{
		Objects: make([]map[string]any, len(objects)),
		Count:   len(objects),
	}
	for i, obj := range objects {
		envelope.Objects[i] = Serialize(obj)
	}

	g.sendJSON(w, http.StatusOK, envelope)
}

// parseFindRequest reads a find request from the JSON body, or from query
// parameters for body-less GET requests.
func parseFindRequest(r *http.Request) (*FindRequest, error) {
	var req FindRequest

	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, errors.New("invalid JSON body")
		}
		return &req, nil
	}

	params := r.URL.Query()
	if raw := params.Get("criteria"); raw != "" {
		req.Criteria = json.RawMessage(raw)
	}
	if raw := params.Get("skip"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("skip must be an integer, got %q", raw)
		}
		req.Skip = &n
	}
	if raw := params.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("limit must be an integer, got %q", raw)
		}
		req.Limit = &n
	}
	if raw := params.Get("sort"); raw != "" {
		// A bare query parameter like sort=-title is not valid JSON; quote it.
		if !json.Valid([]byte(raw)) {
			quoted, _ := json.Marshal(raw)
			raw = string(quoted)
		}
		req.Sort = json.RawMessage(raw)
	}
	return &req, nil
}

// buildQuerySpec compiles and optimizes the wire request into an executable
// plan. Absent criteria match every object.
func buildQuerySpec(req *FindRequest) (*query.Spec, error) {
	spec := &query.Spec{}

	if len(req.Criteria) > 0 {
		compiled, err := query.Compile(req.Criteria)
		if err != nil {
			return nil, err
		}
		spec.Criteria = query.Optimize(compiled)
	}

	if req.Skip != nil {
		if *req.Skip < 0 {
			return nil, errors.New("skip must be non-negative")
		}
		spec.Skip = *req.Skip
	}
	if req.Limit != nil {
		if *req.Limit < 0 {
			return nil, errors.New("limit must be non-negative")
		}
		spec.Limit = req.Limit
	}

	if len(req.Sort) > 0 {
		field, descending, err := query.ParseSort(req.Sort)
		if err != nil {
			return nil, err
		}
		spec.SortField = field
		spec.Descending = descending
	}

	return spec, nil
}

// sendOperationError maps a Get/Delete failure to its wire status.
func (g *Gateway) sendOperationError(w http.ResponseWriter, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, store.ErrNoSuchObject):
		g.sendError(w, http.StatusNotFound, notFoundMsg, classNotFound)
	case errors.Is(err, store.ErrConnClosed):
		// The session was disconnected mid-request; fail like any other
		// unauthenticated request.
		g.sendError(w, http.StatusForbidden, "not authenticated", classAuthentication)
	default:
		g.logger.Error("store operation failed", "error", err)
		g.sendError(w, http.StatusInternalServerError, "internal server error", classStore)
	}
}

// sendJSON writes a JSON response body with the given status.
func (g *Gateway) sendJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		g.logger.Error("encoding response", "error", err)
	}
}

// sendError writes the error envelope {error, error_class}.
func (g *Gateway) sendError(w http.ResponseWriter, status int, message, class string) {
	g.sendJSON(w, status, map[string]string{
		"error":       message,
		"error_class": class,
	})
}

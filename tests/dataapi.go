package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/examhub/portal/storage/dataapi"
)

type record = map[string]interface{}

// FakeDataAPI is an in-memory stand-in for the data API.
// It behaves like a json-server collection store: any `/<resource>` path is a collection.
type FakeDataAPI struct {
	*httptest.Server

	mu       sync.Mutex
	data     map[string][]record
	failures map[string]int // {resource: status code}
	nextID   int
}

func NewFakeDataAPI(t *testing.T) *FakeDataAPI {
	f := &FakeDataAPI{
		data:     make(map[string][]record),
		failures: make(map[string]int),
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Close)
	return f
}

// Client returns a data API client pointed at the fake.
func (f *FakeDataAPI) Client(t *testing.T) *dataapi.Client {
	c, err := dataapi.NewClient(f.URL, f.Server.Client(), 5*time.Second)
	if err != nil {
		t.Fatalf("dataapi.NewClient() failed: %v", err)
	}
	return c
}

// Seed stores records in resource as they would be encoded to JSON.
func (f *FakeDataAPI) Seed(t *testing.T, resource string, records ...interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range records {
		rec, err := toRecord(r)
		if err != nil {
			t.Fatalf("FakeDataAPI.Seed() failed: %v", err)
		}
		f.data[resource] = append(f.data[resource], rec)
	}
}

// Records returns a copy of what resource holds.
func (f *FakeDataAPI) Records(resource string) []map[string]interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]map[string]interface{}, len(f.data[resource]))
	copy(out, f.data[resource])
	return out
}

// FailWith makes every request on resource answer with code. A zero code clears it.
func (f *FakeDataAPI) FailWith(resource string, code int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if code == 0 {
		delete(f.failures, resource)
		return
	}
	f.failures[resource] = code
}

func (f *FakeDataAPI) serve(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	resource := parts[0]
	var id string
	if len(parts) > 1 {
		id = parts[1]
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if code, ok := f.failures[resource]; ok {
		writeJSON(w, code, record{"error": http.StatusText(code)})
		return
	}

	switch {
	case r.Method == http.MethodGet && id == "":
		items := f.data[resource]
		if items == nil {
			items = []record{}
		}
		writeJSON(w, http.StatusOK, items)

	case r.Method == http.MethodGet:
		if i := f.find(resource, id); i >= 0 {
			writeJSON(w, http.StatusOK, f.data[resource][i])
			return
		}
		writeJSON(w, http.StatusNotFound, record{})

	case r.Method == http.MethodPost && id == "":
		rec, err := decodeRecord(r)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, record{"error": err.Error()})
			return
		}
		if v, ok := rec["id"]; !ok || v == nil || v == "" {
			f.nextID++
			rec["id"] = json.Number(fmt.Sprint(1000 + f.nextID))
		}
		f.data[resource] = append(f.data[resource], rec)
		writeJSON(w, http.StatusCreated, rec)

	case r.Method == http.MethodPut && id != "":
		i := f.find(resource, id)
		if i < 0 {
			writeJSON(w, http.StatusNotFound, record{})
			return
		}
		rec, err := decodeRecord(r)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, record{"error": err.Error()})
			return
		}
		rec["id"] = f.data[resource][i]["id"]
		f.data[resource][i] = rec
		writeJSON(w, http.StatusOK, rec)

	case r.Method == http.MethodDelete && id != "":
		i := f.find(resource, id)
		if i < 0 {
			writeJSON(w, http.StatusNotFound, record{})
			return
		}
		f.data[resource] = append(f.data[resource][:i], f.data[resource][i+1:]...)
		writeJSON(w, http.StatusOK, record{})

	default:
		writeJSON(w, http.StatusMethodNotAllowed, record{})
	}
}

// find compares ids as text: stores mix numeric and string ids.
func (f *FakeDataAPI) find(resource, id string) int {
	for i, rec := range f.data[resource] {
		if fmt.Sprint(rec["id"]) == id {
			return i
		}
	}
	return -1
}

func decodeRecord(r *http.Request) (record, error) {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	var rec record
	if err := dec.Decode(&rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func toRecord(v interface{}) (record, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var rec record
	if err = dec.Decode(&rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

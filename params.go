package nxsearch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/natefinch/atomic"
	"github.com/tailscale/hujson"

	"github.com/rmind/nxsearch/internal/eval"
)

// Params is a typed key-value object used both for index-creation
// parameters (lang, filters, algo) and per-search parameters (algo,
// limit, fuzzymatch), per §6.1/§6.3. It is safe for concurrent use.
type Params struct {
	mu      sync.RWMutex
	str     map[string]string
	uintv   map[string]uint64
	boolv   map[string]bool
	strList map[string][]string
}

// NewParams returns an empty Params object.
func NewParams() *Params {
	return &Params{
		str:     make(map[string]string),
		uintv:   make(map[string]uint64),
		boolv:   make(map[string]bool),
		strList: make(map[string][]string),
	}
}

// DefaultIndexParams returns the §4.13 index-parameter defaults:
// filters = {normalizer, stopwords, stemmer}, ranking = BM25, lang = en.
func DefaultIndexParams() *Params {
	p := NewParams()
	p.SetStr("lang", "en")
	p.SetStr("algo", string(eval.BM25))
	p.SetStrList("filters", []string{"normalizer", "stopwords", "stemmer"})
	return p
}

// DefaultSearchParams returns the §6.3 search-parameter defaults:
// algo = BM25, limit = 1000, fuzzymatch = false.
func DefaultSearchParams() *Params {
	p := NewParams()
	p.SetStr("algo", string(eval.BM25))
	p.SetUint("limit", 1000)
	p.SetBool("fuzzymatch", false)
	return p
}

func (p *Params) SetStr(key, val string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.str[key] = val
}

func (p *Params) GetStr(key string) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.str[key]
	return v, ok
}

func (p *Params) SetUint(key string, val uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.uintv[key] = val
}

func (p *Params) GetUint(key string) (uint64, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.uintv[key]
	return v, ok
}

func (p *Params) SetBool(key string, val bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.boolv[key] = val
}

func (p *Params) GetBool(key string) (bool, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.boolv[key]
	return v, ok
}

func (p *Params) SetStrList(key string, val []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	cp := make([]string, len(val))
	copy(cp, val)
	p.strList[key] = cp
}

func (p *Params) GetStrList(key string) ([]string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.strList[key]
	if !ok {
		return nil, false
	}
	cp := make([]string, len(v))
	copy(cp, v)
	return cp, true
}

// Merge overlays overlay's values on top of base, returning a new
// Params; base and overlay are left unmodified. Used by index_create's "merge params
// with defaults" step (§4.13).
func Merge(base, overlay *Params) *Params {
	out := NewParams()
	if base != nil {
		base.mu.RLock()
		for k, v := range base.str {
			out.str[k] = v
		}
		for k, v := range base.uintv {
			out.uintv[k] = v
		}
		for k, v := range base.boolv {
			out.boolv[k] = v
		}
		for k, v := range base.strList {
			out.strList[k] = append([]string(nil), v...)
		}
		base.mu.RUnlock()
	}
	if overlay != nil {
		overlay.mu.RLock()
		for k, v := range overlay.str {
			out.str[k] = v
		}
		for k, v := range overlay.uintv {
			out.uintv[k] = v
		}
		for k, v := range overlay.boolv {
			out.boolv[k] = v
		}
		for k, v := range overlay.strList {
			out.strList[k] = append([]string(nil), v...)
		}
		overlay.mu.RUnlock()
	}
	return out
}

// paramsFile is the on-disk JSON shape written to params.db. Operators
// may hand-edit the file with comments/trailing commas (hujson), but it
// is always rewritten in canonical JSON.
type paramsFile struct {
	Str     map[string]string   `json:"str,omitempty"`
	Uint    map[string]uint64   `json:"uint,omitempty"`
	Bool    map[string]bool     `json:"bool,omitempty"`
	StrList map[string][]string `json:"str_list,omitempty"`
}

func (p *Params) toFile() paramsFile {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return paramsFile{Str: p.str, Uint: p.uintv, Bool: p.boolv, StrList: p.strList}
}

// ToJSON serializes p to canonical, indented JSON.
func (p *Params) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(p.toFile(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("params: %w", err)
	}
	return data, nil
}

// ParamsFromJSON parses data as hujson (tolerant of comments and
// trailing commas) and returns the resulting Params.
func ParamsFromJSON(data []byte) (*Params, error) {
	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("params: invalid: %w", err)
	}
	var pf paramsFile
	if err := json.Unmarshal(std, &pf); err != nil {
		return nil, fmt.Errorf("params: invalid: %w", err)
	}
	p := NewParams()
	for k, v := range pf.Str {
		p.str[k] = v
	}
	for k, v := range pf.Uint {
		p.uintv[k] = v
	}
	for k, v := range pf.Bool {
		p.boolv[k] = v
	}
	for k, v := range pf.StrList {
		p.strList[k] = v
	}
	return p, nil
}

// SaveParams atomically writes p to path as canonical JSON (write-temp-
// then-rename), so a reader never observes a partially written file.
func SaveParams(p *Params, path string) error {
	data, err := p.ToJSON()
	if err != nil {
		return err
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("params: system: %w", err)
	}
	return nil
}

// LoadParams reads and parses path as a hujson-tolerant params file.
func LoadParams(path string) (*Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("params: system: %w", err)
	}
	return ParamsFromJSON(data)
}

// Package cos: iterator identity helpers — short correlation IDs for log
// lines, and a cheap content fingerprint for debug dumps.
/*
 * Copyright (c) 2024, asynciter authors.
 */
package cos

import (
	"fmt"
	"sort"
	"sync"

	"github.com/OneOfOne/xxhash"
	"github.com/teris-io/shortid"
)

var (
	sidMu sync.Mutex
	sid   *shortid.Shortid
)

func init() {
	s, err := shortid.New(1, shortid.DefaultABC, 1)
	if err != nil {
		// shortid.New only fails on a malformed alphabet/seed; the defaults
		// above are known-good, so this would indicate a vendored bug.
		panic(err)
	}
	sid = s
}

// GenID mints a short, log-friendly identifier for a freshly constructed
// iterator.
func GenID() string {
	sidMu.Lock()
	defer sidMu.Unlock()
	id, err := sid.Generate()
	if err != nil {
		return "????????"
	}
	return id
}

// Fingerprint returns a stable, cheap hash of a property snapshot for debug
// logging (not used for equality of arbitrary item payloads).
func Fingerprint(props map[string]any) uint64 {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	h := xxhash.New64()
	for _, k := range keys {
		fmt.Fprintf(h, "%s=%v;", k, props[k])
	}
	return h.Sum64()
}

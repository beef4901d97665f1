package client

import (
	"encoding/json"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// accessTokenCookie is the name of the bearer cookie set by the backend.
// The guard only ever checks its presence, never its contents.
const accessTokenCookie = "access_token"

// Jar is a file-backed cookie jar for a single backend origin. The
// browser keeps httponly auth cookies alive across page loads; the CLI
// equivalent is a JSON snapshot on disk, written after every mutation.
type Jar struct {
	mu      sync.Mutex
	path    string
	cookies map[string]*http.Cookie
}

// jarEntry is the on-disk shape of one cookie.
type jarEntry struct {
	Name    string    `json:"name"`
	Value   string    `json:"value"`
	Expires time.Time `json:"expires,omitzero"`
}

// NewJar creates a jar backed by the given file, loading any previous
// snapshot. An empty path keeps the jar memory-only (used in tests).
func NewJar(path string) (*Jar, error) {
	j := &Jar{
		path:    path,
		cookies: make(map[string]*http.Cookie),
	}
	if path == "" {
		return j, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return j, nil
	}
	if err != nil {
		return nil, err
	}

	var entries []jarEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		// A corrupt snapshot means the session is lost, not the client.
		return j, nil
	}
	now := time.Now()
	for _, e := range entries {
		if !e.Expires.IsZero() && e.Expires.Before(now) {
			continue
		}
		j.cookies[e.Name] = &http.Cookie{Name: e.Name, Value: e.Value, Expires: e.Expires}
	}
	return j, nil
}

// SetCookies implements http.CookieJar. Expired or emptied cookies are
// dropped, matching how the backend deletes them.
func (j *Jar) SetCookies(_ *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()

	now := time.Now()
	for _, ck := range cookies {
		if ck.Name == "" {
			continue
		}
		expired := ck.MaxAge < 0 ||
			(!ck.Expires.IsZero() && ck.Expires.Before(now)) ||
			ck.Value == ""
		if expired {
			delete(j.cookies, ck.Name)
			continue
		}
		stored := &http.Cookie{Name: ck.Name, Value: ck.Value, Expires: ck.Expires}
		if ck.MaxAge > 0 {
			stored.Expires = now.Add(time.Duration(ck.MaxAge) * time.Second)
		}
		j.cookies[ck.Name] = stored
	}
	j.saveLocked()
}

// Cookies implements http.CookieJar.
func (j *Jar) Cookies(_ *url.URL) []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()

	now := time.Now()
	names := make([]string, 0, len(j.cookies))
	for name, ck := range j.cookies {
		if !ck.Expires.IsZero() && ck.Expires.Before(now) {
			delete(j.cookies, name)
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]*http.Cookie, 0, len(names))
	for _, name := range names {
		ck := j.cookies[name]
		out = append(out, &http.Cookie{Name: ck.Name, Value: ck.Value})
	}
	return out
}

// Has reports whether a live cookie with the given name exists.
func (j *Jar) Has(name string) bool {
	j.mu.Lock()
	defer j.mu.Unlock()

	ck, ok := j.cookies[name]
	if !ok {
		return false
	}
	if !ck.Expires.IsZero() && ck.Expires.Before(time.Now()) {
		delete(j.cookies, name)
		return false
	}
	return true
}

// Clear drops all cookies and removes the snapshot file.
func (j *Jar) Clear() {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.cookies = make(map[string]*http.Cookie)
	if j.path != "" {
		_ = os.Remove(j.path)
	}
}

// saveLocked writes the snapshot. Callers hold j.mu.
func (j *Jar) saveLocked() {
	if j.path == "" {
		return
	}

	entries := make([]jarEntry, 0, len(j.cookies))
	for _, ck := range j.cookies {
		entries = append(entries, jarEntry{Name: ck.Name, Value: ck.Value, Expires: ck.Expires})
	}
	sort.Slice(entries, func(i, k int) bool { return entries[i].Name < entries[k].Name })

	data, err := json.Marshal(entries)
	if err != nil {
		return
	}
	// Cookies are credentials: keep the snapshot private to the user.
	_ = os.MkdirAll(filepath.Dir(j.path), 0700)
	_ = os.WriteFile(j.path, data, 0600)
}

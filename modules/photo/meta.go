package photo

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// GrantLevel is the permission level attached to an access grant.
type GrantLevel string

const (
	GrantRead   GrantLevel = "read"
	GrantDelete GrantLevel = "delete"
	GrantManage GrantLevel = "manage"
)

// Valid reports whether the grant level is one of the known levels.
func (l GrantLevel) Valid() bool {
	switch l {
	case GrantRead, GrantDelete, GrantManage:
		return true
	}
	return false
}

// Grant gives a user time-limited access to a photo.
type Grant struct {
	Grantee   string     `json:"grantee"`
	Level     GrantLevel `json:"level"`
	ExpiresAt time.Time  `json:"expires_at"`
}

// active reports whether the grant is still in effect.
func (g Grant) active(now time.Time) bool {
	return now.Before(g.ExpiresAt)
}

// PhotoMeta is the bookkeeping record for one stored photo.
type PhotoMeta struct {
	ID             string            `json:"id"`
	OriginalName   string            `json:"original_name"`
	StorageName    string            `json:"storage_name"`
	ContentType    string            `json:"content_type"`
	Size           int64             `json:"size"`
	MD5            string            `json:"md5"`
	UploaderID     string            `json:"uploader_id"`
	Category       string            `json:"category"`
	Description    string            `json:"description,omitempty"`
	Width          int               `json:"width,omitempty"`
	Height         int               `json:"height,omitempty"`
	UploadedAt     time.Time         `json:"uploaded_at"`
	LastAccessAt   time.Time         `json:"last_access_at"`
	DownloadCount  int64             `json:"download_count"`
	Deleted        bool              `json:"deleted"`
	DeletedAt      *time.Time        `json:"deleted_at,omitempty"`
	Thumbnails     map[string]string `json:"thumbnails,omitempty"`
	CompressedName string            `json:"compressed_name,omitempty"`
	Grants         []Grant           `json:"grants,omitempty"`
}

// clone returns a deep copy so callers can never mutate indexed state.
func (m *PhotoMeta) clone() *PhotoMeta {
	cp := *m
	if m.DeletedAt != nil {
		t := *m.DeletedAt
		cp.DeletedAt = &t
	}
	if m.Thumbnails != nil {
		cp.Thumbnails = make(map[string]string, len(m.Thumbnails))
		for k, v := range m.Thumbnails {
			cp.Thumbnails[k] = v
		}
	}
	cp.Grants = append([]Grant(nil), m.Grants...)
	return &cp
}

// permits reports whether requester may act on the photo at the given
// level. The uploader holds every permission; manage implies delete and
// read; delete implies read. Expired grants never match.
func (m *PhotoMeta) permits(requester string, level GrantLevel, now time.Time) bool {
	if requester == m.UploaderID {
		return true
	}
	for _, g := range m.Grants {
		if g.Grantee != requester || !g.active(now) {
			continue
		}
		switch level {
		case GrantRead:
			return true
		case GrantDelete:
			if g.Level == GrantDelete || g.Level == GrantManage {
				return true
			}
		case GrantManage:
			if g.Level == GrantManage {
				return true
			}
		}
	}
	return false
}

// metaIndex holds photo metadata in memory, newest first. Derived files
// live in the object store; the index is the source of truth for
// ownership, grants and counters.
type metaIndex struct {
	mu     sync.RWMutex
	byID   map[string]*PhotoMeta
	byHash map[string]string // "<uploader>:<md5>" -> photo id
}

func newMetaIndex() *metaIndex {
	return &metaIndex{
		byID:   make(map[string]*PhotoMeta),
		byHash: make(map[string]string),
	}
}

func hashKey(uploaderID, md5hex string) string {
	return uploaderID + ":" + md5hex
}

// insert registers a freshly uploaded photo.
func (idx *metaIndex) insert(m *PhotoMeta) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.byID[m.ID] = m
	idx.byHash[hashKey(m.UploaderID, m.MD5)] = m.ID
}

// get returns a copy of the record, including soft-deleted ones.
func (idx *metaIndex) get(id string) (*PhotoMeta, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	m, ok := idx.byID[id]
	if !ok {
		return nil, false
	}
	return m.clone(), true
}

// findDuplicate returns the live photo with the same content hash for
// this uploader, if any.
func (idx *metaIndex) findDuplicate(uploaderID, md5hex string) (*PhotoMeta, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	id, ok := idx.byHash[hashKey(uploaderID, md5hex)]
	if !ok {
		return nil, false
	}
	m, ok := idx.byID[id]
	if !ok || m.Deleted {
		return nil, false
	}
	return m.clone(), true
}

// update applies fn to the record under the write lock. It returns false
// when the id is unknown.
func (idx *metaIndex) update(id string, fn func(*PhotoMeta)) bool {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	m, ok := idx.byID[id]
	if !ok {
		return false
	}
	fn(m)
	return true
}

// live returns copies of all non-deleted records matching the filters,
// newest upload first. Empty filter values match everything.
func (idx *metaIndex) live(uploaderID, category string) []*PhotoMeta {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	out := make([]*PhotoMeta, 0, len(idx.byID))
	for _, m := range idx.byID {
		if m.Deleted {
			continue
		}
		if uploaderID != "" && m.UploaderID != uploaderID {
			continue
		}
		if category != "" && m.Category != category {
			continue
		}
		out = append(out, m.clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UploadedAt.Equal(out[j].UploadedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].UploadedAt.After(out[j].UploadedAt)
	})
	return out
}

// search returns live records whose original name contains the needle,
// case-insensitively, newest first.
func (idx *metaIndex) search(uploaderID, name string) []*PhotoMeta {
	needle := strings.ToLower(name)
	all := idx.live(uploaderID, "")
	out := make([]*PhotoMeta, 0, len(all))
	for _, m := range all {
		if strings.Contains(strings.ToLower(m.OriginalName), needle) {
			out = append(out, m)
		}
	}
	return out
}

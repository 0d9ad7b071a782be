package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions (prefix by domain/type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// DocumentUUID keys a source document by its content-root-relative path.
func DocumentUUID(filePath string) uuid.UUID {
	return UUID("pagemill:document:" + strings.TrimSpace(filePath))
}

// ListingUUID keys a derived listing page (home, category, tag, overview).
func ListingUUID(kind, slug string) uuid.UUID {
	return UUID("pagemill:listing:" + strings.ToLower(strings.TrimSpace(kind)) + ":" + strings.ToLower(strings.TrimSpace(slug)))
}

// TaxonomyUUID keys a category or tag bucket by namespace and name.
func TaxonomyUUID(namespace, name string) uuid.UUID {
	return UUID("pagemill:" + strings.ToLower(strings.TrimSpace(namespace)) + ":" + strings.TrimSpace(name))
}

// FeedGUID keys a feed entry by the document identity so GUIDs survive
// permalink changes.
func FeedGUID(filePath string) uuid.UUID {
	return UUID("pagemill:feed:" + strings.TrimSpace(filePath))
}

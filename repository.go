package opalforge

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/opalforge/opalforge/cache"
	"github.com/opalforge/opalforge/storage/model"
)

// DefaultCertificateCacheTTL is the expiry for cached certificate
// projections. Certificates are immutable, so entries are effectively
// permanent; the TTL only bounds cache growth.
const DefaultCertificateCacheTTL = 365 * 24 * time.Hour

// DefaultPDFCacheTTL is the expiry for cached rendered documents. The PDF
// cache is a pure performance optimization and never a correctness source.
const DefaultPDFCacheTTL = 24 * time.Hour

// CertificateRepository is the single source of truth for certificate
// existence and content. Reads go through the cache first and fall back to
// the durable store; the cache is only ever populated from store content.
type CertificateRepository struct {
	store model.CertificateStore
	ttl   time.Duration
}

// NewCertificateRepository creates a CertificateRepository over the passed
// store. A non-positive ttl selects DefaultCertificateCacheTTL.
func NewCertificateRepository(store model.CertificateStore, ttl time.Duration) *CertificateRepository {
	if ttl <= 0 {
		ttl = DefaultCertificateCacheTTL
	}
	return &CertificateRepository{
		store: store,
		ttl:   ttl,
	}
}

func certificateCacheKey(certID string) string {
	return cache.Key(cache.KeyCertificate, certID)
}

// Create inserts a new certificate into the durable store and, on success,
// writes a cache projection of the record. The store write is authoritative:
// a cache failure is logged but never fails the create. Duplicate certIds
// surface as model.AlreadyExistsError from the storage layer.
func (r *CertificateRepository) Create(req model.AddCertificate) (*model.Certificate, error) {
	item, err := r.store.Create(req)
	if err != nil {
		return nil, err
	}
	r.cacheWrite(item)
	return item, nil
}

// Verify returns the certificate for the passed certId. The cache is
// consulted first; cache errors are swallowed and treated as misses. A store
// hit after a miss is written back to the cache best-effort. Returns
// model.NotFoundError when the certificate exists in neither tier.
func (r *CertificateRepository) Verify(certID string) (*model.Certificate, error) {
	var cached model.Certificate
	set, err := cache.Get(certificateCacheKey(certID), &cached)
	if err != nil {
		log.WithError(err).WithField("certId", certID).Warn("certificate cache read failed, falling back to store")
	} else if set {
		return &cached, nil
	}
	item, err := r.store.ByCertID(certID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, model.NotFoundErrorFmt("certificate %s not found", certID)
	}
	r.cacheWrite(item)
	return item, nil
}

// Exists reports whether a certificate with the passed certId exists, using
// the same two-tier lookup as Verify but without transferring the record.
func (r *CertificateRepository) Exists(certID string) (bool, error) {
	var cached model.Certificate
	set, err := cache.Get(certificateCacheKey(certID), &cached)
	if err != nil {
		log.WithError(err).WithField("certId", certID).Warn("certificate cache read failed, falling back to store")
	} else if set {
		return true, nil
	}
	return r.store.Exists(certID)
}

func (r *CertificateRepository) cacheWrite(item *model.Certificate) {
	if err := cache.Set(certificateCacheKey(item.CertID), item, r.ttl); err != nil {
		log.WithError(err).WithField("certId", item.CertID).Warn("could not cache certificate")
	}
}

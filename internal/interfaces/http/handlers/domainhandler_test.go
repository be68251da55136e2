package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nomadly/internal/application/registration/registrar"
	"nomadly/internal/application/registration/usecases"
	"nomadly/internal/domain/registration"
	vo "nomadly/internal/domain/registration/valueobjects"
	apperrors "nomadly/internal/shared/errors"
	"nomadly/internal/shared/logger"
)

type stubDomainRepo struct {
	domains map[uint]*registration.Domain
	updates int
}

func (r *stubDomainRepo) Create(ctx context.Context, dom *registration.Domain) error {
	r.domains[dom.ID()] = dom
	return nil
}

func (r *stubDomainRepo) Update(ctx context.Context, dom *registration.Domain) error {
	r.updates++
	r.domains[dom.ID()] = dom
	return nil
}

func (r *stubDomainRepo) GetByID(ctx context.Context, id uint) (*registration.Domain, error) {
	dom, ok := r.domains[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("domain not found")
	}
	return dom, nil
}

func (r *stubDomainRepo) GetActiveByOwnerAndName(ctx context.Context, ownerID int64, domainName string) (*registration.Domain, error) {
	for _, dom := range r.domains {
		if dom.OwnerID() == ownerID && dom.DomainName() == domainName {
			return dom, nil
		}
	}
	return nil, apperrors.NewNotFoundError("domain not found")
}

func (r *stubDomainRepo) ListByOwner(ctx context.Context, ownerID int64) ([]*registration.Domain, error) {
	var out []*registration.Domain
	for _, dom := range r.domains {
		if dom.OwnerID() == ownerID {
			out = append(out, dom)
		}
	}
	return out, nil
}

type stubRegistrar struct {
	updateNSCalls int
	updateNSErr   error
}

func (r *stubRegistrar) CheckAvailability(ctx context.Context, domainName string) (*registrar.AvailabilityResult, error) {
	return &registrar.AvailabilityResult{Available: true}, nil
}

func (r *stubRegistrar) CreateContact(ctx context.Context, details registrar.ContactDetails) (string, error) {
	return "handle-1", nil
}

func (r *stubRegistrar) RegisterDomain(ctx context.Context, domainName, contactHandle string, nameservers []string) (*registrar.RegistrationOutcome, error) {
	return &registrar.RegistrationOutcome{RegistrarID: "op-" + domainName, ExpiryYears: 1}, nil
}

func (r *stubRegistrar) UpdateNameservers(ctx context.Context, registrarID string, nameservers []string) error {
	r.updateNSCalls++
	return r.updateNSErr
}

func seedManagedDomain(t *testing.T, ownerID int64) *registration.Domain {
	t.Helper()
	ns, err := vo.NewNameservers([]string{"anna.ns.cloudflare.com", "burt.ns.cloudflare.com"})
	require.NoError(t, err)
	dom, err := registration.NewDomain(ownerID, "nomad-site.com", "op-12345", "zone-1",
		vo.NameserverModeManagedDNS, ns, time.Now().UTC().AddDate(1, 0, 0))
	require.NoError(t, err)
	dom.SetID(1)
	return dom
}

func newDomainTestRouter(repo *stubDomainRepo, reg *stubRegistrar) *gin.Engine {
	gin.SetMode(gin.TestMode)
	uc := usecases.NewUpdateNameserversUseCase(repo, reg, logger.NewLogger())
	handler := NewDomainHandler(uc, logger.NewLogger())
	engine := gin.New()
	engine.PUT("/domains/:domain_id/nameservers", handler.UpdateNameservers)
	return engine
}

func putNameservers(t *testing.T, router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPut, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestDomainHandler_UpdateNameservers(t *testing.T) {
	repo := &stubDomainRepo{domains: map[uint]*registration.Domain{}}
	dom := seedManagedDomain(t, 7)
	repo.domains[dom.ID()] = dom
	reg := &stubRegistrar{}
	router := newDomainTestRouter(repo, reg)

	w := putNameservers(t, router, "/domains/1/nameservers", UpdateNameserversRequest{
		OwnerID:     7,
		Nameservers: []string{"ns1.example.com", "ns2.example.com"},
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, reg.updateNSCalls)
	assert.Equal(t, 1, repo.updates)

	var resp struct {
		Data DomainResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "custom", resp.Data.NameserverMode)
	assert.Equal(t, []string{"ns1.example.com", "ns2.example.com"}, resp.Data.Nameservers)
}

func TestDomainHandler_UpdateNameservers_UnknownDomain(t *testing.T) {
	repo := &stubDomainRepo{domains: map[uint]*registration.Domain{}}
	reg := &stubRegistrar{}
	router := newDomainTestRouter(repo, reg)

	w := putNameservers(t, router, "/domains/42/nameservers", UpdateNameserversRequest{
		OwnerID:     7,
		Nameservers: []string{"ns1.example.com", "ns2.example.com"},
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Zero(t, reg.updateNSCalls)
}

func TestDomainHandler_UpdateNameservers_InvalidBody(t *testing.T) {
	repo := &stubDomainRepo{domains: map[uint]*registration.Domain{}}
	reg := &stubRegistrar{}
	router := newDomainTestRouter(repo, reg)

	// A single nameserver fails the min=2 binding rule before any lookup.
	w := putNameservers(t, router, "/domains/1/nameservers", UpdateNameserversRequest{
		OwnerID:     7,
		Nameservers: []string{"ns1.example.com"},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, reg.updateNSCalls)
}

func TestDomainHandler_UpdateNameservers_BadDomainID(t *testing.T) {
	repo := &stubDomainRepo{domains: map[uint]*registration.Domain{}}
	router := newDomainTestRouter(repo, &stubRegistrar{})

	w := putNameservers(t, router, "/domains/not-a-number/nameservers", UpdateNameserversRequest{
		OwnerID:     7,
		Nameservers: []string{"ns1.example.com", "ns2.example.com"},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

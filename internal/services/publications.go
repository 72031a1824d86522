package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/desertthunder/pubdex/internal/models"
)

const (
	publicationsPath     = "/publications"
	userPublicationsPath = "/users/me/publications"
	uploadPath           = "/upload/"
	downloadPath         = "/download"
)

// PublicationAPI exposes the publication endpoints.
type PublicationAPI struct {
	gw *Gateway
}

// NewPublicationAPI creates a publication client on top of the given gateway.
func NewPublicationAPI(gw *Gateway) *PublicationAPI {
	return &PublicationAPI{gw: gw}
}

// List fetches publications matching the query. The search string is
// forwarded verbatim; ranking is server-side.
func (p *PublicationAPI) List(ctx context.Context, q models.Query) ([]models.Publication, error) {
	q = q.Normalized()

	query := url.Values{}
	if q.Search != "" {
		query.Set("search", q.Search)
	}
	query.Set("order_by", string(q.OrderBy))

	var pubs []models.Publication
	if err := p.gw.JSON(ctx, http.MethodGet, publicationsPath, RequestOpts{Query: query}, &pubs); err != nil {
		return nil, err
	}
	return pubs, nil
}

// Mine fetches the authenticated user's publications, sorted by orderBy.
func (p *PublicationAPI) Mine(ctx context.Context, orderBy models.OrderBy) ([]models.Publication, error) {
	if !orderBy.Valid() {
		orderBy = models.OrderDefault
	}

	query := url.Values{"order_by": {string(orderBy)}}

	var pubs []models.Publication
	if err := p.gw.JSON(ctx, http.MethodGet, userPublicationsPath, RequestOpts{Query: query}, &pubs); err != nil {
		return nil, err
	}
	return pubs, nil
}

// Upload posts a multipart document submission and returns the created
// publication, including server-extracted metadata.
func (p *PublicationAPI) Upload(ctx context.Context, body *MultipartBody) (*models.Publication, error) {
	var pub models.Publication
	if err := p.gw.JSON(ctx, http.MethodPost, uploadPath, RequestOpts{Multipart: body}, &pub); err != nil {
		return nil, err
	}
	return &pub, nil
}

// Delete removes a publication by id and returns the server's confirmation
// message. Deleting the same id twice yields a NotFound error the second time.
func (p *PublicationAPI) Delete(ctx context.Context, id int) (string, error) {
	path := fmt.Sprintf("%s/%d", publicationsPath, id)

	var out struct {
		Message string `json:"message"`
	}
	if err := p.gw.JSON(ctx, http.MethodDelete, path, RequestOpts{}, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// Download streams the raw document for a publication into w and returns the
// number of bytes written. The body is binary, not JSON.
func (p *PublicationAPI) Download(ctx context.Context, id int, w io.Writer) (int64, error) {
	path := fmt.Sprintf("%s/%d", downloadPath, id)

	resp, err := p.gw.Request(ctx, http.MethodGet, path, RequestOpts{})
	if err != nil {
		return 0, err
	}

	n, err := w.Write(resp.Body)
	if err != nil {
		return int64(n), fmt.Errorf("failed to write document: %w", err)
	}
	return int64(n), nil
}

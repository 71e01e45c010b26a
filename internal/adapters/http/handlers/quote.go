package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/idusortus/quotes-service/internal/adapters/http/dto"
	"github.com/idusortus/quotes-service/internal/adapters/http/pipeline"
	"github.com/idusortus/quotes-service/internal/app"
	"github.com/idusortus/quotes-service/internal/app/result"
)

// Quote endpoint messages.
const (
	msgQuoteRetrieved    = "Quote retrieved successfully."
	msgQuoteNotRetrieved = "Quote retrieval failed."
	msgInvalidQuoteID    = "Quote ID must be a positive integer."
	msgQuoteNotFound     = "Quote with ID '%d' not found."
	msgQuotesRetrieved   = "Quotes retrieved successfully."
	msgInvalidQuery      = "Invalid query parameters."
	msgMalformedQuery    = "Query parameters are malformed."
	msgQuoteCreated      = "Quote created successfully."
	msgQuoteNotCreated   = "Quote creation failed."
	msgQuoteUpdated      = "Quote updated successfully."
	msgQuoteNotUpdated   = "Quote update failed."
	msgQuoteDeleted      = "Quote deleted successfully."
	msgQuoteNotDeleted   = "Quote deletion failed."
)

// QuoteHandler serves the quote endpoints.
type QuoteHandler struct {
	service *app.QuoteService
}

// NewQuoteHandler creates a quote handler.
func NewQuoteHandler(service *app.QuoteService) *QuoteHandler {
	return &QuoteHandler{service: service}
}

// notFound adds the id-specific messages shared by the single-quote endpoints.
func notFound(id int, byCode map[string]string) map[string]string {
	byCode[result.CodeInvalidID] = msgInvalidQuoteID
	byCode[result.CodeQuoteNotFound] = fmt.Sprintf(msgQuoteNotFound, id)

	return byCode
}

// GetByID handles GET /quotes/:id.
func (h *QuoteHandler) GetByID(c *gin.Context) error {
	id := pathID(c)

	res, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		return err
	}

	reply(c, res, outcome{
		status:  http.StatusOK,
		success: msgQuoteRetrieved,
		failure: msgQuoteNotRetrieved,
		byCode:  notFound(id, map[string]string{}),
	})

	return nil
}

// GetAll handles GET /quotes with pageNumber, pageSize, category, sortBy
// and sortOrder query parameters.
func (h *QuoteHandler) GetAll(c *gin.Context) error {
	var params dto.ListQuotesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, dto.Error(msgInvalidQuery,
			result.NewError(result.CodeValidationFailed, msgMalformedQuery)))

		return nil
	}

	res, err := h.service.GetAll(c.Request.Context(), params.ToQuery())
	if err != nil {
		return err
	}

	reply(c, res, outcome{
		status:  http.StatusOK,
		success: msgQuotesRetrieved,
		failure: msgInvalidQuery,
	})

	return nil
}

// Create handles POST /quotes once the body passed the validation gate.
func (h *QuoteHandler) Create(c *gin.Context, req app.QuoteCreateRequest) error {
	res, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		return err
	}

	if res.IsSuccess() {
		c.Header("Location", c.Request.URL.Path+"/"+strconv.Itoa(res.Value().QuoteID))
	}

	reply(c, res, outcome{
		status:  http.StatusCreated,
		success: msgQuoteCreated,
		failure: msgQuoteNotCreated,
	})

	return nil
}

// Update handles PUT /quotes/:id once the body passed the validation gate.
func (h *QuoteHandler) Update(c *gin.Context, req app.QuoteUpdateRequest) error {
	id := pathID(c)

	res, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		return err
	}

	reply(c, res, outcome{
		status:  http.StatusOK,
		success: msgQuoteUpdated,
		failure: msgQuoteNotUpdated,
		byCode:  notFound(id, map[string]string{}),
	})

	return nil
}

// Delete handles DELETE /quotes/:id.
func (h *QuoteHandler) Delete(c *gin.Context) error {
	id := pathID(c)

	res, err := h.service.Delete(c.Request.Context(), id)
	if err != nil {
		return err
	}

	if res.IsSuccess() {
		c.JSON(http.StatusOK, dto.OKEmpty(msgQuoteDeleted))
		return nil
	}

	reply(c, res, outcome{
		failure: msgQuoteNotDeleted,
		byCode:  notFound(id, map[string]string{}),
	})

	return nil
}

// RegisterRoutes registers the quote routes on rg. Every handler runs inside
// the boundary; the write routes run behind the given middleware first.
func (h *QuoteHandler) RegisterRoutes(rg *gin.RouterGroup, b *pipeline.Boundary, write ...gin.HandlerFunc) {
	quotes := rg.Group("/quotes")

	quotes.GET("", b.Wrap(h.GetAll))
	quotes.GET("/:id", b.Wrap(h.GetByID))
	quotes.POST("", chain(write, b.Wrap(pipeline.Validate(app.QuoteCreateRules, h.Create)))...)
	quotes.PUT("/:id", chain(write, b.Wrap(pipeline.Validate(app.QuoteUpdateRules, h.Update)))...)
	quotes.DELETE("/:id", chain(write, b.Wrap(h.Delete))...)
}

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/hitoshi/unimart/internal/catalog"
	"github.com/hitoshi/unimart/internal/middleware"
	"github.com/hitoshi/unimart/internal/model"
)

// ListingServiceInterface は出品ハンドラーが必要とするサービスインターフェース。
type ListingServiceInterface interface {
	AddListing(ctx context.Context, seller *model.User, input catalog.CreateListingInput) (*model.Listing, error)
	UpdateListing(ctx context.Context, userID, listingID string, patch model.ListingPatch) (*model.Listing, error)
	DeleteListing(ctx context.Context, userID, listingID string) error
	GetListing(ctx context.Context, listingID string) (*model.Listing, error)
	MyListings(ctx context.Context) ([]*model.Listing, error)
	FilterListings(ctx context.Context, filter model.ListingFilter) ([]*model.Listing, error)
}

// UserFinder は認証済みユーザーの取得インターフェース。
// 出品作成時に出品者スナップショットを取るために使用する。
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// ImageFetcher は画像プロキシ用のSSRF安全なHTTPクライアント生成インターフェース。
// security.ImageURLGuardServiceの部分集合として定義する。
type ImageFetcher interface {
	NewSafeClient(timeout time.Duration, maxResponseSize int64) *http.Client
	ValidateURL(rawURL string) error
}

// ImageProxyConfig は画像プロキシの設定。
type ImageProxyConfig struct {
	Timeout time.Duration
	MaxSize int64
}

// ListingHandler は出品管理のHTTPハンドラー。
type ListingHandler struct {
	service     ListingServiceInterface
	userFinder  UserFinder
	imageClient ImageFetcher
	proxyConfig ImageProxyConfig
	validate    *validator.Validate
}

// NewListingHandler はListingHandlerを生成する。
func NewListingHandler(
	service ListingServiceInterface,
	userFinder UserFinder,
	imageClient ImageFetcher,
	proxyConfig ImageProxyConfig,
) *ListingHandler {
	return &ListingHandler{
		service:     service,
		userFinder:  userFinder,
		imageClient: imageClient,
		proxyConfig: proxyConfig,
		validate:    validator.New(),
	}
}

// createListingRequest は出品作成リクエストのボディ。
type createListingRequest struct {
	Title       string `json:"title" validate:"required,max=100"`
	Description string `json:"description" validate:"required,max=500"`
	Price       int    `json:"price" validate:"required,gt=0"`
	Category    string `json:"category" validate:"required"`
	Negotiable  bool   `json:"negotiable"`
	Image       string `json:"image" validate:"omitempty,url"`
}

// updateListingRequest は出品更新リクエストのボディ。nilフィールドは変更しない。
type updateListingRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Price       *int    `json:"price"`
	Category    *string `json:"category"`
	Negotiable  *bool   `json:"negotiable"`
	Image       *string `json:"image"`
}

// listingResponse は出品情報のAPIレスポンス。
type listingResponse struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Price        int       `json:"price"`
	Category     string    `json:"category"`
	Negotiable   bool      `json:"negotiable"`
	Image        string    `json:"image,omitempty"`
	SellerID     string    `json:"seller_id"`
	SellerName   string    `json:"seller_name"`
	SellerPhone  string    `json:"seller_phone"`
	SellerAvatar string    `json:"seller_avatar"`
	CreatedAt    time.Time `json:"created_at"`
}

// apiErrorResponse は統一エラーフォーマットのレスポンス。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// List は出品一覧を絞り込み条件付きで返す。
// GET /api/listings?category=&min_price=&max_price=&q=
func (h *ListingHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := model.ListingFilter{
		Category: r.URL.Query().Get("category"),
		Search:   r.URL.Query().Get("q"),
	}

	if raw := r.URL.Query().Get("min_price"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidPriceError())
			return
		}
		filter.MinPrice = &v
	}
	if raw := r.URL.Query().Get("max_price"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidPriceError())
			return
		}
		filter.MaxPrice = &v
	}
	if filter.Category != "" && !model.ValidCategory(filter.Category) {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidCategoryError(filter.Category))
		return
	}

	listings, err := h.service.FilterListings(r.Context(), filter)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeListingsResponse(w, listings)
}

// Get は出品詳細を返す。
// GET /api/listings/{id}
func (h *ListingHandler) Get(w http.ResponseWriter, r *http.Request) {
	listingID := chi.URLParam(r, "id")

	listing, err := h.service.GetListing(r.Context(), listingID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if listing == nil {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewListingNotFoundError(listingID))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toListingResponse(listing))
}

// Create は新規出品を作成する。
// POST /api/listings
func (h *ListingHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req createListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, invalidRequestError())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, toValidationError(err))
		return
	}

	seller, err := h.userFinder.FindByID(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	listing, err := h.service.AddListing(r.Context(), seller, catalog.CreateListingInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Negotiable:  req.Negotiable,
		Image:       req.Image,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toListingResponse(listing))
}

// Update は出品を部分更新する。出品者本人のみ許可される。
// PATCH /api/listings/{id}
func (h *ListingHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	listingID := chi.URLParam(r, "id")

	var req updateListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, invalidRequestError())
		return
	}

	listing, err := h.service.UpdateListing(r.Context(), userID, listingID, model.ListingPatch{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Negotiable:  req.Negotiable,
		Image:       req.Image,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toListingResponse(listing))
}

// Delete は出品を削除する。出品者本人のみ許可される。
// DELETE /api/listings/{id}
func (h *ListingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	listingID := chi.URLParam(r, "id")

	if err := h.service.DeleteListing(r.Context(), userID, listingID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Mine は現在のセッション中に作成した出品の一覧を返す。
// GET /api/listings/mine
func (h *ListingHandler) Mine(w http.ResponseWriter, r *http.Request) {
	listings, err := h.service.MyListings(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeListingsResponse(w, listings)
}

// ImageProxy は出品画像をSSRF安全なクライアント経由で取得して返す。
// 内部ネットワークへのアクセスはsecurityパッケージのガードで遮断される。
// GET /api/listings/{id}/image
func (h *ListingHandler) ImageProxy(w http.ResponseWriter, r *http.Request) {
	listingID := chi.URLParam(r, "id")

	listing, err := h.service.GetListing(r.Context(), listingID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if listing == nil || listing.Image == "" {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewListingNotFoundError(listingID))
		return
	}

	if err := h.imageClient.ValidateURL(listing.Image); err != nil {
		writeAPIErrorResponse(w, http.StatusForbidden, model.NewInvalidImageURLError(err.Error()))
		return
	}

	client := h.imageClient.NewSafeClient(h.proxyConfig.Timeout, h.proxyConfig.MaxSize)
	resp, err := client.Get(listing.Image)
	if err != nil {
		slog.Warn("image fetch failed",
			slog.String("listing_id", listingID),
			slog.String("error", err.Error()),
		)
		writeAPIErrorResponse(w, http.StatusBadGateway, &model.APIError{
			Code:     "IMAGE_FETCH_FAILED",
			Message:  "画像の取得に失敗しました。",
			Category: "system",
			Action:   "しばらく待ってから再度お試しください。",
		})
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		writeAPIErrorResponse(w, http.StatusBadGateway, &model.APIError{
			Code:     "IMAGE_FETCH_FAILED",
			Message:  "画像の取得に失敗しました。",
			Category: "system",
			Action:   "しばらく待ってから再度お試しください。",
		})
		return
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.Header().Set("Cache-Control", "public, max-age=3600")
	io.Copy(w, io.LimitReader(resp.Body, h.proxyConfig.MaxSize))
}

// --- ヘルパー関数 ---

// toListingResponse はmodel.ListingからAPIレスポンスに変換する。
func toListingResponse(listing *model.Listing) listingResponse {
	return listingResponse{
		ID:           listing.ID,
		Title:        listing.Title,
		Description:  listing.Description,
		Price:        listing.Price,
		Category:     listing.Category,
		Negotiable:   listing.Negotiable,
		Image:        listing.Image,
		SellerID:     listing.SellerID,
		SellerName:   listing.SellerName,
		SellerPhone:  listing.SellerPhone,
		SellerAvatar: listing.SellerAvatar,
		CreatedAt:    listing.CreatedAt,
	}
}

// writeListingsResponse は出品スライスを{"listings": [...]}形式で書き込む。
func writeListingsResponse(w http.ResponseWriter, listings []*model.Listing) {
	items := make([]listingResponse, len(listings))
	for i, l := range listings {
		items[i] = toListingResponse(l)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"listings": items})
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// invalidRequestError はリクエストボディ解析失敗のエラーを生成する。
func invalidRequestError() *model.APIError {
	return &model.APIError{
		Code:     "INVALID_REQUEST",
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}

// toValidationError はvalidatorのエラーを最初の違反フィールドのAPIErrorに変換する。
func toValidationError(err error) *model.APIError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return invalidRequestError()
	}

	fe := verrs[0]
	switch fe.Field() {
	case "Title":
		if fe.Tag() == "max" {
			return model.NewFieldTooLongError("タイトル", model.TitleMaxLength)
		}
		return model.NewMissingFieldError("タイトル")
	case "Description":
		if fe.Tag() == "max" {
			return model.NewFieldTooLongError("説明文", model.DescriptionMaxLength)
		}
		return model.NewMissingFieldError("説明文")
	case "Price":
		return model.NewInvalidPriceError()
	case "Category":
		return model.NewMissingFieldError("カテゴリ")
	case "Image":
		return model.NewInvalidImageURLError("URL形式が不正です")
	default:
		return invalidRequestError()
	}
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		statusCode := mapAPIErrorToHTTPStatus(apiErr)
		writeAPIErrorResponse(w, statusCode, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case model.ErrCodeForbidden, model.ErrCodeNotListingSeller:
		return http.StatusForbidden
	case model.ErrCodeInvalidEmail, model.ErrCodeInvalidPassword, model.ErrCodeMissingField,
		model.ErrCodeInvalidPrice, model.ErrCodeInvalidCategory, model.ErrCodeFieldTooLong,
		model.ErrCodeInvalidImageURL, model.ErrCodeInvalidSort:
		return http.StatusBadRequest
	case model.ErrCodeListingNotFound, model.ErrCodeUserNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

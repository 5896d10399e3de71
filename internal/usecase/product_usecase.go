package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"camerastore/internal/domain/model"
	repo "camerastore/internal/repository"
)

type ProductUsecase struct {
	productRepo repo.ProductRepository
	auditRepo   repo.AuditLogRepository
	log         Logger
}

// DI
func NewProductUsecase(productRepo repo.ProductRepository, auditRepo repo.AuditLogRepository, log Logger) *ProductUsecase {
	if log == nil {
		log = nopLogger{}
	}
	return &ProductUsecase{
		productRepo: productRepo,
		auditRepo:   auditRepo,
		log:         log,
	}
}

type ProductOutput struct {
	ID            int64                 `json:"id"`
	ProductNumber string                `json:"productNumber"`
	Name          string                `json:"name"`
	Image         string                `json:"image"`
	Category      model.ProductCategory `json:"category"`
	Price         int64                 `json:"price"`
	Description   string                `json:"description,omitempty"`
	CreatedAt     time.Time             `json:"createdAt"`
}

// GET /productsの入力
type ListProductsInput struct {
	Category string
	Q        string
}

func (u *ProductUsecase) ListProducts(ctx context.Context, in ListProductsInput) ([]ProductOutput, error) {
	q := strings.TrimSpace(in.Q)
	if len(q) > 100 {
		return []ProductOutput{}, newError(ErrValidation, "q too long")
	}

	query := repo.ProductListQuery{Q: q}
	if c := strings.ToUpper(strings.TrimSpace(in.Category)); c != "" {
		cat := model.ProductCategory(c)
		if !cat.Valid() {
			return []ProductOutput{}, newError(ErrValidation, "category must be CAMERA or LENS")
		}
		query.Category = cat
	}

	items, err := u.productRepo.List(ctx, query)
	if err != nil {
		return []ProductOutput{}, internalError(err)
	}

	out := make([]ProductOutput, 0, len(items))
	for _, p := range items {
		out = append(out, toProductOutput(p))
	}
	return out, nil
}

func (u *ProductUsecase) GetProduct(ctx context.Context, productID int64) (ProductOutput, error) {
	if productID <= 0 {
		return ProductOutput{}, newError(ErrValidation, "invalid product id")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return ProductOutput{}, newError(ErrNotFound, "product not found")
	}
	if err != nil {
		return ProductOutput{}, internalError(err)
	}
	return toProductOutput(p), nil
}

type CreateProductInput struct {
	ProductNumber string
	Name          string
	Image         string
	Category      string
	Price         int64
	Description   string
}

func (u *ProductUsecase) CreateProduct(ctx context.Context, actor Actor, in CreateProductInput) (ProductOutput, error) {
	if actor.UserID <= 0 {
		return ProductOutput{}, newError(ErrUnauthorized, "unauthorized")
	}
	if !actor.IsAdmin() {
		return ProductOutput{}, newError(ErrForbidden, "admin only")
	}

	p := model.Product{
		ProductNumber: strings.TrimSpace(in.ProductNumber),
		Name:          strings.TrimSpace(in.Name),
		Image:         strings.TrimSpace(in.Image),
		Category:      model.ProductCategory(strings.ToUpper(strings.TrimSpace(in.Category))),
		Price:         in.Price,
		Description:   strings.TrimSpace(in.Description),
	}

	var errs []string
	if p.ProductNumber == "" {
		errs = append(errs, "productNumber is required")
	}
	if p.Name == "" {
		errs = append(errs, "name is required")
	}
	if p.Image == "" {
		errs = append(errs, "image is required")
	}
	if !p.Category.Valid() {
		errs = append(errs, "category must be CAMERA or LENS")
	}
	if p.Price < 0 {
		errs = append(errs, "price must be >= 0")
	}
	if len(errs) > 0 {
		return ProductOutput{}, newError(ErrValidation, "invalid product input", errs...)
	}

	created, err := u.productRepo.Create(ctx, p)
	if errors.Is(err, repo.ErrDuplicateKey) {
		return ProductOutput{}, newError(ErrConflict, "productNumber already exists")
	}
	if err != nil {
		return ProductOutput{}, internalError(err)
	}

	out := toProductOutput(created)

	//監査ログ（失敗しても商品登録は成功扱い）
	afterJSON, _ := json.Marshal(out)
	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  actor.UserID,
		Action:       model.AuditActionCreateProduct,
		ResourceType: model.AuditResourceProduct,
		ResourceID:   created.ID,
		BeforeJSON:   "null",
		AfterJSON:    string(afterJSON),
		CreatedAt:    time.Now(),
	}); err != nil {
		u.log.Warnf("audit log for product %d: %v", created.ID, err)
	}

	return out, nil
}

func toProductOutput(p model.Product) ProductOutput {
	return ProductOutput{
		ID:            p.ID,
		ProductNumber: p.ProductNumber,
		Name:          p.Name,
		Image:         p.Image,
		Category:      p.Category,
		Price:         p.Price,
		Description:   p.Description,
		CreatedAt:     p.CreatedAt,
	}
}

package usecase

import (
	"context"
	"errors"

	"camerastore/internal/domain/model"
	repo "camerastore/internal/repository"
)

// CartUsecase は /cart の業務ロジックです。
// カートは常にログインユーザーのものだけを扱う。
type CartUsecase struct {
	cartRepo    repo.CartRepository
	productRepo repo.ProductRepository
}

func NewCartUsecase(cartRepo repo.CartRepository, productRepo repo.ProductRepository) *CartUsecase {
	return &CartUsecase{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// 価格は現在の商品価格（注文時にスナップショットされる）
type CartItemResponse struct {
	ProductID     int64                 `json:"productId"`
	ProductNumber string                `json:"productNumber"`
	Name          string                `json:"name"`
	Image         string                `json:"image"`
	Category      model.ProductCategory `json:"category"`
	Price         int64                 `json:"price"`
	Quantity      int64                 `json:"quantity"`
	Subtotal      int64                 `json:"subtotal"`
}

type CartResponse struct {
	Items       []CartItemResponse `json:"items"`
	ItemsTotal  int64              `json:"itemsTotal"`
	ShippingFee int64              `json:"shippingFee"`
	Total       int64              `json:"total"`
}

type AddCartInput struct {
	ProductID int64
	Quantity  int64
}

func (u *CartUsecase) GetCart(ctx context.Context, userID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, newError(ErrUnauthorized, "unauthorized")
	}
	return u.buildCartResponse(ctx, userID)
}

// 同じ商品なら数量を加算
func (u *CartUsecase) AddItem(ctx context.Context, userID int64, in AddCartInput) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, newError(ErrUnauthorized, "unauthorized")
	}
	if in.ProductID <= 0 {
		return CartResponse{}, newError(ErrValidation, "invalid productId")
	}
	if in.Quantity < 1 {
		return CartResponse{}, newError(ErrValidation, "quantity must be >= 1")
	}

	//商品の存在確認
	if _, err := u.productRepo.FindByID(ctx, in.ProductID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return CartResponse{}, newError(ErrNotFound, "product not found")
		}
		return CartResponse{}, internalError(err)
	}

	if err := u.cartRepo.AddQuantity(ctx, userID, in.ProductID, in.Quantity); err != nil {
		return CartResponse{}, internalError(err)
	}
	return u.buildCartResponse(ctx, userID)
}

func (u *CartUsecase) UpdateQuantity(ctx context.Context, userID int64, productID int64, quantity int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, newError(ErrUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return CartResponse{}, newError(ErrValidation, "invalid productId")
	}
	if quantity < 1 {
		return CartResponse{}, newError(ErrValidation, "quantity must be >= 1")
	}

	if err := u.cartRepo.SetQuantity(ctx, userID, productID, quantity); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return CartResponse{}, newError(ErrNotFound, "item not in cart")
		}
		return CartResponse{}, internalError(err)
	}
	return u.buildCartResponse(ctx, userID)
}

func (u *CartUsecase) RemoveItem(ctx context.Context, userID int64, productID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, newError(ErrUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return CartResponse{}, newError(ErrValidation, "invalid productId")
	}

	if err := u.cartRepo.Delete(ctx, userID, productID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return CartResponse{}, newError(ErrNotFound, "item not in cart")
		}
		return CartResponse{}, internalError(err)
	}
	return u.buildCartResponse(ctx, userID)
}

func (u *CartUsecase) Clear(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return newError(ErrUnauthorized, "unauthorized")
	}
	if err := u.cartRepo.DeleteAllByUserID(ctx, userID); err != nil {
		return internalError(err)
	}
	return nil
}

// 削除済みの商品は表示しない
func (u *CartUsecase) buildCartResponse(ctx context.Context, userID int64) (CartResponse, error) {
	items, err := u.cartRepo.ListByUserID(ctx, userID)
	if err != nil {
		return CartResponse{}, internalError(err)
	}

	respItems := make([]CartItemResponse, 0, len(items))
	var itemsTotal int64

	for _, it := range items {
		p, err := u.productRepo.FindByID(ctx, it.ProductID)
		if errors.Is(err, repo.ErrNotFound) {
			continue
		}
		if err != nil {
			return CartResponse{}, internalError(err)
		}

		sub := p.Price * it.Quantity
		respItems = append(respItems, CartItemResponse{
			ProductID:     p.ID,
			ProductNumber: p.ProductNumber,
			Name:          p.Name,
			Image:         p.Image,
			Category:      p.Category,
			Price:         p.Price,
			Quantity:      it.Quantity,
			Subtotal:      sub,
		})
		itemsTotal += sub
	}

	resp := CartResponse{Items: respItems}
	if len(respItems) > 0 {
		amount := CalculateAmount(itemsTotal)
		resp.ItemsTotal = amount.ItemsTotal
		resp.ShippingFee = amount.ShippingFee
		resp.Total = amount.FinalTotal
	}
	return resp, nil
}

package usecase

import "camerastore/internal/domain/model"

const (
	// この金額以上で送料無料
	FreeShippingThreshold int64 = 30000
	FlatShippingFee       int64 = 3000
)

func ShippingFee(itemsTotal int64) int64 {
	if itemsTotal >= FreeShippingThreshold {
		return 0
	}
	return FlatShippingFee
}

// 割引は今のところ常に0
func CalculateAmount(itemsTotal int64) model.OrderAmount {
	fee := ShippingFee(itemsTotal)
	var discount int64
	return model.OrderAmount{
		ItemsTotal:  itemsTotal,
		ShippingFee: fee,
		Discount:    discount,
		FinalTotal:  itemsTotal + fee - discount,
	}
}

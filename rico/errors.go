package rico

import "errors"

var (
	// ErrInvalidParameters is returned when SaleParameters cannot describe a
	// schedule (missing or negative prices, overflowing block ranges).
	ErrInvalidParameters = errors.New("invalid sale parameters")

	// ErrPreSale is returned for lookups of blocks before the allocation phase.
	ErrPreSale = errors.New("block precedes sale start")

	// ErrUnknownStage is returned when a stage index is past the last stage.
	ErrUnknownStage = errors.New("unknown stage")

	// ErrStageIDOverflow is returned when a stage index cannot be expressed in
	// the contract's uint8 stage encoding without colliding with PostSaleStageID.
	ErrStageIDOverflow = errors.New("stage index does not fit contract encoding")
)

package handler

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/rl1809/shop-cart/internal/core/service"
)

type GRPCHandler struct {
	widget *service.Widget
	log    logrus.FieldLogger
}

func NewGRPCHandler(widget *service.Widget, log logrus.FieldLogger) *GRPCHandler {
	return &GRPCHandler{widget: widget, log: log}
}

func (h *GRPCHandler) ListProducts(ctx context.Context, req *ListProductsRequest) (*ListProductsResponse, error) {
	return &ListProductsResponse{Products: toProductResponses(h.widget.Products())}, nil
}

func (h *GRPCHandler) GetCart(ctx context.Context, req *GetCartRequest) (*CartResponse, error) {
	return toCartResponse(h.widget.Snapshot()), nil
}

func (h *GRPCHandler) AddItem(ctx context.Context, req *AddItemRequest) (*CartResponse, error) {
	snapshot, err := h.widget.Add(ctx, int(req.ProductID))
	if err != nil {
		return nil, h.toStatus(err)
	}
	return toCartResponse(snapshot), nil
}

func (h *GRPCHandler) RemoveItem(ctx context.Context, req *RemoveItemRequest) (*CartResponse, error) {
	if req.Index < 0 {
		return nil, status.Error(codes.InvalidArgument, "index must not be negative")
	}
	snapshot, err := h.widget.Remove(ctx, int(req.Index))
	if err != nil {
		return nil, h.toStatus(err)
	}
	return toCartResponse(snapshot), nil
}

func (h *GRPCHandler) toStatus(err error) error {
	switch {
	case errors.Is(err, service.ErrUnknownProduct):
		return status.Error(codes.NotFound, "unknown product")
	case errors.Is(err, service.ErrItemNotFound):
		return status.Error(codes.NotFound, "cart item not found")
	default:
		h.log.Errorf("cart action failed: %v", err)
		return status.Error(codes.Internal, "internal error")
	}
}

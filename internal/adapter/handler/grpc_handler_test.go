package handler

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

func newTestClient(t *testing.T, tab *testTab) *CartServiceClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	RegisterCartServiceServer(srv, NewGRPCHandler(tab.widget, tab.log))
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return NewCartServiceClient(conn)
}

func TestGRPCHandler_AddAndRemove(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t, newTestTab(t))

	_, err := client.AddItem(ctx, &AddItemRequest{ProductID: 5})
	require.NoError(t, err)
	cart, err := client.AddItem(ctx, &AddItemRequest{ProductID: 7})
	require.NoError(t, err)

	require.Len(t, cart.Items, 2)
	assert.Equal(t, 2, cart.Count)
	assert.Equal(t, "5.00", cart.Discount)
	assert.Equal(t, "404.98", cart.Total)

	cart, err = client.RemoveItem(ctx, &RemoveItemRequest{Index: 0})
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 7, cart.Items[0].ProductID)

	got, err := client.GetCart(ctx, &GetCartRequest{})
	require.NoError(t, err)
	assert.Equal(t, cart, got)
}

func TestGRPCHandler_ErrorCodes(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t, newTestTab(t))

	_, err := client.AddItem(ctx, &AddItemRequest{ProductID: 42})
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = client.RemoveItem(ctx, &RemoveItemRequest{Index: 0})
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = client.RemoveItem(ctx, &RemoveItemRequest{Index: -1})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestGRPCHandler_ListProducts(t *testing.T) {
	client := newTestClient(t, newTestTab(t))

	resp, err := client.ListProducts(context.Background(), &ListProductsRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Products, 8)
	assert.Equal(t, 1, resp.Products[0].ID)
	assert.Equal(t, "149.99", resp.Products[5].FinalPrice)
}

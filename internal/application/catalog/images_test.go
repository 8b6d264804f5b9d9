package catalog

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testImageBase = "https://cdn.example.com/images/"

// MockImageStore is a mock implementation of ImageStore
type MockImageStore struct {
	mock.Mock
}

func (m *MockImageStore) GenerateUploadURL(ctx context.Context, key, contentType string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, key, contentType, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockImageStore) ObjectExists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockImageStore) DeleteObject(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockImageStore) PublicURL(key string) string {
	return testImageBase + key
}

func newImageTestService() (*Service, *MockProductRepository, *MockImageStore) {
	products := new(MockProductRepository)
	images := new(MockImageStore)
	return NewService(products, new(MockCategoryRepository), WithImageStore(images)), products, images
}

func TestService_RequestImageUpload(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled without a store", func(t *testing.T) {
		svc, _, _ := newTestService()
		_, err := svc.RequestImageUpload(ctx, uuid.New(), uuid.New(), "image/png")
		assert.ErrorIs(t, err, ErrImagesDisabled)
	})

	t.Run("presigns a key under the product", func(t *testing.T) {
		svc, products, images := newImageTestService()
		p := testProduct(t, "Mango", "")
		expires := time.Now().Add(15 * time.Minute)
		products.On("FindForSeller", ctx, p.SellerID, p.ID).Return(&p, nil)
		images.On("GenerateUploadURL", ctx, mock.MatchedBy(func(key string) bool {
			return strings.HasPrefix(key, "products/"+p.ID.String()+"/") && strings.HasSuffix(key, ".webp")
		}), "image/webp", time.Duration(0)).Return("https://s3.example.com/put", expires, nil)

		upload, err := svc.RequestImageUpload(ctx, p.SellerID, p.ID, "image/webp")
		require.NoError(t, err)
		assert.Equal(t, "https://s3.example.com/put", upload.UploadURL)
		assert.Equal(t, expires, upload.ExpiresAt)
		assert.True(t, strings.HasPrefix(upload.StorageKey, "products/"+p.ID.String()+"/"))
		images.AssertExpectations(t)
	})

	t.Run("rejects other content types", func(t *testing.T) {
		svc, products, _ := newImageTestService()
		_, err := svc.RequestImageUpload(ctx, uuid.New(), uuid.New(), "image/gif")
		var de *shared.DomainError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, "INVALID_INPUT", de.Code)
		products.AssertNotCalled(t, "FindForSeller", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("another seller's product", func(t *testing.T) {
		svc, products, images := newImageTestService()
		sellerID, id := uuid.New(), uuid.New()
		products.On("FindForSeller", ctx, sellerID, id).Return(nil, shared.ErrNotFound)

		_, err := svc.RequestImageUpload(ctx, sellerID, id, "image/jpeg")
		assert.ErrorIs(t, err, shared.ErrNotFound)
		images.AssertNotCalled(t, "GenerateUploadURL", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestService_ConfirmImage(t *testing.T) {
	ctx := context.Background()

	t.Run("sets the URL and deletes the replaced object", func(t *testing.T) {
		svc, products, images := newImageTestService()
		p := testProduct(t, "Mango", "")
		oldKey := "products/" + p.ID.String() + "/old.jpg"
		newKey := "products/" + p.ID.String() + "/new.jpg"
		p.ImageURL = testImageBase + oldKey
		products.On("FindForSeller", ctx, p.SellerID, p.ID).Return(&p, nil)
		products.On("Save", ctx, &p).Return(nil)
		images.On("ObjectExists", ctx, newKey).Return(true, nil)
		images.On("DeleteObject", ctx, oldKey).Return(nil)

		got, err := svc.ConfirmImage(ctx, p.SellerID, p.ID, newKey)
		require.NoError(t, err)
		assert.Equal(t, testImageBase+newKey, got.ImageURL)
		images.AssertExpectations(t)
	})

	t.Run("external image is left alone", func(t *testing.T) {
		svc, products, images := newImageTestService()
		p := testProduct(t, "Mango", "")
		key := "products/" + p.ID.String() + "/new.jpg"
		p.ImageURL = "https://elsewhere.example.com/mango.jpg"
		products.On("FindForSeller", ctx, p.SellerID, p.ID).Return(&p, nil)
		products.On("Save", ctx, &p).Return(nil)
		images.On("ObjectExists", ctx, key).Return(true, nil)

		_, err := svc.ConfirmImage(ctx, p.SellerID, p.ID, key)
		require.NoError(t, err)
		images.AssertNotCalled(t, "DeleteObject", mock.Anything, mock.Anything)
	})

	t.Run("failed delete does not fail the confirmation", func(t *testing.T) {
		svc, products, images := newImageTestService()
		p := testProduct(t, "Mango", "")
		oldKey := "products/" + p.ID.String() + "/old.jpg"
		newKey := "products/" + p.ID.String() + "/new.jpg"
		p.ImageURL = testImageBase + oldKey
		products.On("FindForSeller", ctx, p.SellerID, p.ID).Return(&p, nil)
		products.On("Save", ctx, &p).Return(nil)
		images.On("ObjectExists", ctx, newKey).Return(true, nil)
		images.On("DeleteObject", ctx, oldKey).Return(errors.New("timeout"))

		_, err := svc.ConfirmImage(ctx, p.SellerID, p.ID, newKey)
		require.NoError(t, err)
	})

	t.Run("object not uploaded", func(t *testing.T) {
		svc, products, images := newImageTestService()
		p := testProduct(t, "Mango", "")
		key := "products/" + p.ID.String() + "/new.jpg"
		products.On("FindForSeller", ctx, p.SellerID, p.ID).Return(&p, nil)
		images.On("ObjectExists", ctx, key).Return(false, nil)

		_, err := svc.ConfirmImage(ctx, p.SellerID, p.ID, key)
		assert.ErrorIs(t, err, ErrImageNotUploaded)
		products.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("key of another product", func(t *testing.T) {
		svc, products, _ := newImageTestService()
		p := testProduct(t, "Mango", "")

		_, err := svc.ConfirmImage(ctx, p.SellerID, p.ID, "products/"+uuid.NewString()+"/x.jpg")
		var de *shared.DomainError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, "INVALID_INPUT", de.Code)
		products.AssertNotCalled(t, "FindForSeller", mock.Anything, mock.Anything, mock.Anything)
	})
}

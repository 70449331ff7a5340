// Package transport defines request and response DTOs for the listings module.
package transport

// CarSummary is the public projection of a listing used in search results.
// Only the first gallery image is included; full galleries are served by
// the detail endpoint.
type CarSummary struct {
	ID           string `json:"id"`
	Make         string `json:"make"`
	Model        string `json:"model"`
	Year         int    `json:"year"`
	Price        int64  `json:"price"`
	Mileage      int    `json:"mileage"`
	FuelType     string `json:"fuelType"`
	Transmission string `json:"transmission"`
	CarClass     string `json:"class"`
	Image        string `json:"image,omitempty"`
	Description  string `json:"description"`
	CreatedAt    string `json:"createdAt"`
}

// CarDetail is the full listing record served by the detail endpoint.
type CarDetail struct {
	ID           string   `json:"id"`
	SellerID     string   `json:"sellerId"`
	Make         string   `json:"make"`
	Model        string   `json:"model"`
	Year         int      `json:"year"`
	Price        int64    `json:"price"`
	Mileage      int      `json:"mileage"`
	FuelType     string   `json:"fuelType"`
	Transmission string   `json:"transmission"`
	CarClass     string   `json:"class"`
	Images       []string `json:"images"`
	Description  string   `json:"description"`
	CreatedAt    string   `json:"createdAt"`
	UpdatedAt    string   `json:"updatedAt"`
}

// SearchResponse is the paginated search envelope.
type SearchResponse struct {
	Cars       []CarSummary           `json:"cars"`
	Total      int64                  `json:"total"`
	Page       int                    `json:"page"`
	Limit      int                    `json:"limit"`
	TotalPages int                    `json:"totalPages"`
	Filters    map[string]interface{} `json:"filters"`
}

// CreateCarRequest is the payload for posting a new listing.
type CreateCarRequest struct {
	Make         string `json:"make" binding:"required,min=1,max=64"`
	Model        string `json:"model" binding:"required,min=1,max=64"`
	Year         int    `json:"year" binding:"required,min=1900"`
	Price        int64  `json:"price" binding:"required,min=0"`
	Mileage      int    `json:"mileage" binding:"min=0"`
	FuelType     string `json:"fuelType" binding:"required"`
	Transmission string `json:"transmission" binding:"required"`
	CarClass     string `json:"class" binding:"required"`
	Description  string `json:"description" binding:"max=4000"`
}

// UpdateCarRequest is a partial update; nil fields are left unchanged.
type UpdateCarRequest struct {
	Price       *int64  `json:"price" binding:"omitempty,min=0"`
	Mileage     *int    `json:"mileage" binding:"omitempty,min=0"`
	Description *string `json:"description" binding:"omitempty,max=4000"`
}

// AdminListRequest is the dashboard listing request body.
type AdminListRequest struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Sort  string `json:"sort"`
}

// AdminPagination reports the dashboard page position.
type AdminPagination struct {
	Page  int `json:"page"`
	Pages int `json:"pages"`
}

// AdminListResponse is the dashboard listing envelope.
type AdminListResponse struct {
	Success        bool            `json:"success"`
	Items          []CarSummary    `json:"items"`
	TotalPosts     int64           `json:"totalPosts"`
	LastMonthPosts int64           `json:"lastMonthPosts"`
	Pagination     AdminPagination `json:"pagination"`
}

// PresignUploadRequest asks for a direct-to-storage upload URL for one
// gallery image.
type PresignUploadRequest struct {
	FileName    string `json:"fileName" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
	Size        int64  `json:"size" binding:"required,min=1"`
}

// PresignUploadResponse carries the upload URL and the object key the
// client must attach after uploading.
type PresignUploadResponse struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"`
}

// AttachImageRequest registers an uploaded object on a listing.
type AttachImageRequest struct {
	ObjectKey string `json:"objectKey" binding:"required"`
}

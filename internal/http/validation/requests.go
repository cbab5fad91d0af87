package validation

type TrackRequest struct {
	Action string `json:"action" validate:"required,oneof=view download"`
}

type ProgressRequest struct {
	Percentage *float64 `json:"percentage" validate:"required,gte=0,lte=100"`
	Position   int64    `json:"position" validate:"gte=0"`
	Completed  bool     `json:"completed"`
}

type RateRequest struct {
	Value   *float64 `json:"value" validate:"required,gte=0,lte=5"`
	Comment *string  `json:"comment" validate:"omitempty,max=2000"`
}

type ListMaterialsQuery struct {
	Category  *uint    `form:"category" validate:"omitempty,gte=1"`
	Search    string   `form:"search" validate:"max=200"`
	Level     string   `form:"level" validate:"omitempty,oneof=basic intermediate advanced"`
	DateRange string   `form:"dateRange" validate:"omitempty,oneof=last_week last_month last_year"`
	MinRating *float64 `form:"minRating" validate:"omitempty,gte=0,lte=5"`
	Page      int      `form:"page" validate:"gte=0"`
	PageSize  int      `form:"pageSize" validate:"gte=0"`
}

type FeaturedQuery struct {
	Limit int `form:"limit" validate:"gte=0"`
}

package handlers

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/tidwall/gjson"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	apierrors "github.com/scc-digitalhub/custom-resource-manager/internal/api/errors"
	"github.com/scc-digitalhub/custom-resource-manager/internal/config"
	internalerrors "github.com/scc-digitalhub/custom-resource-manager/internal/errors"
	"github.com/scc-digitalhub/custom-resource-manager/pkg/types"
)

const (
	defaultSortField = "metadata.name"
	sortAscending    = "asc"
	sortDescending   = "desc"
)

type listQuery struct {
	Page int    `form:"page" validate:"min=0"`
	Size int    `form:"size" validate:"min=0"`
	Sort string `form:"sort" validate:"max=256"`
}

// readListQuery binds and checks the page, size and sort query parameters.
func readListQuery(c *gin.Context, v *validator.Validate) (listQuery, sortOrder, error) {
	var query listQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		return listQuery{}, sortOrder{}, apierrors.NewSerializationError("reading query parameters", err)
	}
	if err := v.Struct(query); err != nil {
		return listQuery{}, sortOrder{}, err
	}

	order, err := parseSort(query.Sort)
	if err != nil {
		return listQuery{}, sortOrder{}, err
	}
	return query, order, nil
}

// pageSize applies the configured default and maximum to a requested size.
func pageSize(cfg *config.APIConfig, requested int) int {
	switch {
	case requested <= 0:
		return cfg.DefaultPageSize
	case requested > cfg.MaxPageSize:
		return cfg.MaxPageSize
	default:
		return requested
	}
}

type sortOrder struct {
	field      string
	descending bool
}

// parseSort reads "field,asc|desc". The field is a dotted gjson path.
func parseSort(raw string) (sortOrder, error) {
	if strings.TrimSpace(raw) == "" {
		return sortOrder{field: defaultSortField}, nil
	}

	field, direction, _ := strings.Cut(raw, ",")
	field = strings.TrimSpace(field)
	if field == "" {
		return sortOrder{}, internalerrors.NewInvalidArgumentError(fmt.Sprintf("invalid sort %q: missing field", raw))
	}

	switch strings.ToLower(strings.TrimSpace(direction)) {
	case "", sortAscending:
		return sortOrder{field: field}, nil
	case sortDescending:
		return sortOrder{field: field, descending: true}, nil
	default:
		return sortOrder{}, internalerrors.NewInvalidArgumentError(
			fmt.Sprintf("invalid sort direction %q: must be %s or %s", direction, sortAscending, sortDescending))
	}
}

type sortable struct {
	object map[string]interface{}
	key    gjson.Result
}

// paginate sorts items by order and cuts the zero-based page out of them.
func paginate(items []*unstructured.Unstructured, order sortOrder, page, size int) (types.ResourcePage, error) {
	entries := make([]sortable, 0, len(items))
	for _, item := range items {
		data, err := json.Marshal(item.Object)
		if err != nil {
			return types.ResourcePage{}, internalerrors.NewMarshalingError("failed to marshal resource for sorting")
		}
		entries = append(entries, sortable{
			object: item.Object,
			key:    gjson.GetBytes(data, order.field),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if order.descending {
			return less(entries[j].key, entries[i].key)
		}
		return less(entries[i].key, entries[j].key)
	})

	start, end := pageBounds(len(entries), page, size)

	content := make([]map[string]interface{}, 0, end-start)
	for _, entry := range entries[start:end] {
		content = append(content, entry.object)
	}

	return types.ResourcePage{
		Content:       content,
		TotalElements: len(entries),
		Number:        page,
		Size:          size,
	}, nil
}

// pageBounds returns the slice bounds of a zero-based page without computing
// page*size, which may overflow for large page numbers.
func pageBounds(total, page, size int) (int, int) {
	if page < 0 || size <= 0 || page > total/size {
		return total, total
	}

	start := page * size
	if size > total-start {
		return start, total
	}
	return start, start + size
}

// less orders missing values first, numbers numerically and everything else by
// its string form.
func less(a, b gjson.Result) bool {
	if !a.Exists() || !b.Exists() {
		return !a.Exists() && b.Exists()
	}
	if a.Type == gjson.Number && b.Type == gjson.Number {
		return a.Num < b.Num
	}
	return a.String() < b.String()
}

package enums

type FilterType string

const (
	FilterTypeTitle       FilterType = "title"
	FilterTypeDescription FilterType = "description"
	FilterTypeBoth        FilterType = "both"
)

func ParseFilterType(value string) (FilterType, bool) {
	switch FilterType(value) {
	case FilterTypeTitle, FilterTypeDescription, FilterTypeBoth:
		return FilterType(value), true
	default:
		return "", false
	}
}

type FilterAction string

const (
	FilterActionBlock FilterAction = "block"
	FilterActionFlag  FilterAction = "flag"
	// FilterActionModerate is accepted as a stored value but behaves
	// exactly like FilterActionFlag during evaluation.
	FilterActionModerate FilterAction = "moderate"
)

func ParseFilterAction(value string) (FilterAction, bool) {
	switch FilterAction(value) {
	case FilterActionBlock, FilterActionFlag, FilterActionModerate:
		return FilterAction(value), true
	default:
		return "", false
	}
}

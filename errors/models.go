package errors

const (
	CurrentPageInvalidErrorCode   = 200_001
	ObjectIDNotFoundErrorCode     = 200_002
	DuplicatedObjectIDErrorCode   = 200_003
	SortDirectionInvalidErrorCode = 200_005
	PageContentInvalidErrorCode   = 200_006
	PageCursorInvalidErrorCode    = 200_007
	SearchUnsupportedErrorCode    = 200_008
	RequestInvalidErrorCode       = 200_009
)

// CurrentPageInvalidError indicates user gives invalid current page when searching items
var CurrentPageInvalidError = new(CurrentPageInvalidErrorCode, "CurrentPageInvalid", "Current page can be only positive integer")

// ObjectIDNotFoundError indicates user gives invalid item ID
var ObjectIDNotFoundError = new(ObjectIDNotFoundErrorCode, "ObjectIDNotFound", "Item with ID %s is not exist")

// DuplicatedObjectIDError indicates storage rejected every generated ID for a new item
var DuplicatedObjectIDError = new(DuplicatedObjectIDErrorCode, "DuplicatedObjectID", "item could not be saved after %d attempts: %v")

// SortDirectionInvalidError indicates a sort entry uses a direction other than asc or desc
var SortDirectionInvalidError = new(SortDirectionInvalidErrorCode, "SortDirectionInvalid", "Sort on field %q has invalid direction %q, must be 'asc' or 'desc'")

// PageContentInvalidError indicates a page was built from an item that is not a stored record
var PageContentInvalidError = new(PageContentInvalidErrorCode, "PageContentInvalid", "Page item %d is not a valid record: %v")

// PageCursorInvalidError indicates the page cursor token could not be decoded
var PageCursorInvalidError = new(PageCursorInvalidErrorCode, "PageCursorInvalid", "Page cursor is invalid: %v")

// SearchUnsupportedError indicates the collection has no text search configured
var SearchUnsupportedError = new(SearchUnsupportedErrorCode, "SearchUnsupported", "Search is not supported on collection %s")

// RequestInvalidError indicates the request body or query could not be parsed
var RequestInvalidError = new(RequestInvalidErrorCode, "RequestInvalid", "Request is invalid: %v")

package export

import "errors"

// ErrExport wraps every workbook construction failure.
var ErrExport = errors.New("xlsx export failed")

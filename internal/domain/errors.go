package domain

import "errors"

var (
	ErrNotFound          = errors.New("resource not found")
	ErrInvoiceNotFound   = errors.New("invoice does not exist")
	ErrInvalidIdentifier = errors.New("invoice identifier is not parseable")
	ErrNoCheckpoint      = errors.New("no discovery checkpoint configured")
	ErrTemplateMissing   = errors.New("certificate template not found")
	ErrDiscoveryRunning  = errors.New("a discovery run is already in progress")
)

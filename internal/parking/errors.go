package parking

import "errors"

var (
	ErrNoSpotAvailable    = errors.New("no spot available")
	ErrUnknownTicket      = errors.New("unknown ticket")
	ErrUnknownVehicle     = errors.New("unknown vehicle")
	ErrUnknownSpot        = errors.New("unknown spot")
	ErrUnknownVehicleType = errors.New("unknown vehicle type")
	ErrAlreadyPaid        = errors.New("ticket already paid")
	ErrNotYetPaid         = errors.New("ticket not paid")
	ErrAlreadyOccupied    = errors.New("spot already occupied")
	ErrAlreadyFree        = errors.New("spot already free")
	ErrInvalidLayout      = errors.New("invalid parking lot layout")
)

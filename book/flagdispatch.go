package book

import "fmt"

// FlagFormatter formats/parses a venue's feed-specific Flags encoding (spec
// section 9: "Venue-specific flag dispatch... model this as a registry
// mapping VenueID -> {printFn, scanFn} populated at startup and looked up
// by the single venue ID on each format call").
type FlagFormatter struct {
	Print func(Flags) string
	Scan  func(string) (Flags, error)
}

var defaultFlagFormatter = FlagFormatter{
	Print: func(f Flags) string { return fmt.Sprintf("0x%x", uint32(f)) },
	Scan: func(s string) (Flags, error) {
		var v uint32
		if _, err := fmt.Sscanf(s, "0x%x", &v); err != nil {
			return 0, err
		}
		return Flags(v), nil
	},
}

var flagRegistry = map[string]FlagFormatter{}

// RegisterFlagFormatter installs a venue-specific FlagFormatter. Call at
// startup; not safe for concurrent use with FlagFormatterFor.
func RegisterFlagFormatter(venueID string, f FlagFormatter) {
	flagRegistry[venueID] = f
}

// FlagFormatterFor returns the registered FlagFormatter for venueID, or a
// generic hex formatter if none was registered.
func FlagFormatterFor(venueID string) FlagFormatter {
	if f, ok := flagRegistry[venueID]; ok {
		return f
	}
	return defaultFlagFormatter
}

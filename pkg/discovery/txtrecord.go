package discovery

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/powersuspend/powersuspend-go/pkg/powerstate"
)

// TXTRecordMap is a map of TXT record key-value pairs.
type TXTRecordMap map[string]string

// EncodeServiceTXT creates the TXT records for a coordinator advertisement.
func EncodeServiceTXT(info *ServiceInfo) TXTRecordMap {
	txt := make(TXTRecordMap)

	// Required fields
	txt[TXTKeyVersion] = info.Version
	txt[TXTKeyPath] = info.APIPath

	// Optional fields
	if info.InstanceID != "" {
		txt[TXTKeyInstance] = info.InstanceID
	}
	if info.HasMode {
		txt[TXTKeyMode] = strconv.Itoa(int(info.Mode))
	}

	return txt
}

// DecodeServiceTXT parses the TXT records of a coordinator advertisement.
// The returned ServiceInfo has no instance name or port set.
func DecodeServiceTXT(txt TXTRecordMap) (*ServiceInfo, error) {
	info := &ServiceInfo{}

	var ok bool
	info.Version, ok = txt[TXTKeyVersion]
	if !ok || info.Version == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyVersion)
	}

	info.APIPath, ok = txt[TXTKeyPath]
	if !ok || !strings.HasPrefix(info.APIPath, "/") {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyPath)
	}

	info.InstanceID = txt[TXTKeyInstance]

	if m, ok := txt[TXTKeyMode]; ok {
		mode, err := powerstate.ParseMode(m)
		if err != nil {
			return nil, fmt.Errorf("%w: %s=%q", ErrInvalidTXTRecord, TXTKeyMode, m)
		}
		info.Mode = mode
		info.HasMode = true
	}

	return info, nil
}

// TXTRecordsToStrings converts a TXTRecordMap to a slice of "key=value"
// strings, sorted by key.
func TXTRecordsToStrings(txt TXTRecordMap) []string {
	result := make([]string, 0, len(txt))
	for k, v := range txt {
		result = append(result, fmt.Sprintf("%s=%s", k, v))
	}
	sort.Strings(result)
	return result
}

// StringsToTXTRecords parses a slice of "key=value" strings into a TXTRecordMap.
func StringsToTXTRecords(strs []string) TXTRecordMap {
	txt := make(TXTRecordMap)
	for _, s := range strs {
		parts := strings.SplitN(s, "=", 2)
		if len(parts) == 2 {
			txt[parts[0]] = parts[1]
		} else if len(parts) == 1 && parts[0] != "" {
			// Key without value (boolean flag)
			txt[parts[0]] = ""
		}
	}
	return txt
}

// ValidateInstanceName checks if an instance name is valid for mDNS.
func ValidateInstanceName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInstanceNameTooLong)
	}
	if len(name) > MaxInstanceNameLen {
		return ErrInstanceNameTooLong
	}
	return nil
}

// ValidateTXTSize checks that the encoded records fit the TXT size limit.
func ValidateTXTSize(txt TXTRecordMap) error {
	size := 0
	for _, s := range TXTRecordsToStrings(txt) {
		size += len(s) + 1 // length byte
	}
	if size > MaxTXTRecordSize {
		return fmt.Errorf("%w: %d bytes exceeds %d", ErrInvalidTXTRecord, size, MaxTXTRecordSize)
	}
	return nil
}

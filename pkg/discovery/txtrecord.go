package discovery

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/mash-protocol/buspanel/pkg/version"
	"github.com/mash-protocol/buspanel/pkg/wire"
)

// TXTRecordMap is a map of TXT record key-value pairs.
type TXTRecordMap map[string]string

// EncodePeerTXT creates TXT records for a peer advertisement.
func EncodePeerTXT(info *PeerInfo) TXTRecordMap {
	ver := info.Version
	if ver == "" {
		ver = version.Current
	}
	return TXTRecordMap{
		TXTKeyNodeID:  strconv.FormatUint(uint64(info.NodeID), 10),
		TXTKeyVersion: ver,
	}
}

// DecodePeerTXT parses TXT records of a peer advertisement.
func DecodePeerTXT(txt TXTRecordMap) (*PeerInfo, error) {
	info := &PeerInfo{}

	nidStr, ok := txt[TXTKeyNodeID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyNodeID)
	}
	nid, err := strconv.ParseUint(nidStr, 10, 8)
	if err != nil || wire.NodeID(nid) > wire.MaxNodeID {
		return nil, fmt.Errorf("%w: node ID %q", ErrInvalidTXTRecord, nidStr)
	}
	info.NodeID = wire.NodeID(nid)

	info.Version, ok = txt[TXTKeyVersion]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyVersion)
	}
	if _, err := version.Parse(info.Version); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTXTRecord, err)
	}

	return info, nil
}

// TXTRecordsToStrings converts a TXTRecordMap to sorted "key=value" strings.
func TXTRecordsToStrings(txt TXTRecordMap) []string {
	result := make([]string, 0, len(txt))
	for k, v := range txt {
		result = append(result, k+"="+v)
	}
	slices.Sort(result)
	return result
}

// StringsToTXTRecords parses "key=value" strings into a TXTRecordMap.
func StringsToTXTRecords(strs []string) TXTRecordMap {
	txt := make(TXTRecordMap)
	for _, s := range strs {
		k, v, found := strings.Cut(s, "=")
		if found {
			txt[k] = v
		} else if k != "" {
			// Key without value (boolean flag)
			txt[k] = ""
		}
	}
	return txt
}

// InstanceName builds the advertised instance name for a node.
func InstanceName(id wire.NodeID) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("bus-%d-%s", uint8(id), suffix)
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

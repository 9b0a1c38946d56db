package contract

import (
	"bytes"
	"embed"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Standard interface tags.
const (
	TagERC20   = "erc20"
	TagERC721  = "erc721"
	TagERC1155 = "erc1155"
)

//go:embed abis/*.json
var standardFS embed.FS

var standardABIs = map[string]*abi.ABI{
	TagERC20:   mustLoadStandard(TagERC20),
	TagERC721:  mustLoadStandard(TagERC721),
	TagERC1155: mustLoadStandard(TagERC1155),
}

func mustLoadStandard(tag string) *abi.ABI {
	raw, err := standardFS.ReadFile("abis/" + tag + ".json")
	if err != nil {
		panic(fmt.Sprintf("missing bundled %s ABI: %v", tag, err))
	}
	parsed, err := abi.JSON(bytes.NewReader(raw))
	if err != nil {
		panic(fmt.Sprintf("invalid bundled %s ABI: %v", tag, err))
	}
	return &parsed
}

// StandardABI returns the bundled ABI for a tag, or nil for unknown tags. The
// returned ABI is shared and must not be modified.
func StandardABI(tag string) *abi.ABI {
	return standardABIs[NormalizeTag(tag)]
}

// NormalizeTag maps spellings such as "ERC-721" or " Erc721 " to "erc721".
func NormalizeTag(tag string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(tag)), "-", "")
}

// standardTagFor picks the bundled interface for a tag set: erc721, then erc1155,
// then erc20 for any other non-empty set.
func standardTagFor(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	has := make(map[string]bool, len(tags))
	for _, t := range tags {
		has[t] = true
	}
	switch {
	case has[TagERC721]:
		return TagERC721
	case has[TagERC1155]:
		return TagERC1155
	}
	return TagERC20
}

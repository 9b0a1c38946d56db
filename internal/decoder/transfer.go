package decoder

import (
	"github.com/dmagro/evm-decoder/internal/contract"
	"github.com/dmagro/evm-decoder/internal/signature"
)

// Transfer event signatures. ERC-20 and ERC-721 share one signature and differ
// only in whether the third parameter is indexed.
const (
	TransferSignature       = "Transfer(address,address,uint256)"
	TransferSingleSignature = "TransferSingle(address,address,address,uint256,uint256)"
	TransferBatchSignature  = "TransferBatch(address,address,address,uint256[],uint256[])"
)

var (
	TransferTopic       = signature.Topic(TransferSignature)
	TransferSingleTopic = signature.Topic(TransferSingleSignature)
	TransferBatchTopic  = signature.Topic(TransferBatchSignature)
)

// ClassifyTransfer returns the token standard of a transfer event, or "" when sig is
// not a transfer. A Transfer log with 4 topics carries the token id in topic 3 and is
// ERC-721; with fewer it is ERC-20.
func ClassifyTransfer(sig string, topicCount int) string {
	switch sig {
	case TransferSignature:
		if topicCount == 4 {
			return contract.TagERC721
		}
		return contract.TagERC20
	case TransferSingleSignature, TransferBatchSignature:
		return contract.TagERC1155
	}
	return ""
}

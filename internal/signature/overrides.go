package signature

// knownFunctions and knownEvents seed the override table. They cover the token
// standards so that the common cases never need a remote lookup, and pin the
// canonical signature for selectors that remote databases report ambiguously.
var knownFunctions = []string{
	"transfer(address,uint256)",
	"transferFrom(address,address,uint256)",
	"approve(address,uint256)",
	"balanceOf(address)",
	"allowance(address,address)",
	"totalSupply()",
	"decimals()",
	"symbol()",
	"name()",
	"increaseAllowance(address,uint256)",
	"decreaseAllowance(address,uint256)",
	"deposit()",
	"withdraw(uint256)",
	"permit(address,address,uint256,uint256,uint8,bytes32,bytes32)",
	"safeTransferFrom(address,address,uint256)",
	"safeTransferFrom(address,address,uint256,bytes)",
	"setApprovalForAll(address,bool)",
	"ownerOf(uint256)",
	"getApproved(uint256)",
	"isApprovedForAll(address,address)",
	"safeTransferFrom(address,address,uint256,uint256,bytes)",
	"safeBatchTransferFrom(address,address,uint256[],uint256[],bytes)",
	"transferOwnership(address)",
	"renounceOwnership()",
	"multicall(bytes[])",
	"execute(bytes,bytes[],uint256)",
}

var knownEvents = []string{
	"Transfer(address,address,uint256)",
	"Approval(address,address,uint256)",
	"ApprovalForAll(address,address,bool)",
	"TransferSingle(address,address,address,uint256,uint256)",
	"TransferBatch(address,address,address,uint256[],uint256[])",
	"URI(string,uint256)",
	"Deposit(address,uint256)",
	"Withdrawal(address,uint256)",
	"OwnershipTransferred(address,address)",
}

// DefaultOverrides returns a fresh copy of the built-in override table, keyed by
// normalized hash.
func DefaultOverrides() map[string]string {
	out := make(map[string]string, len(knownFunctions)+len(knownEvents))
	for _, sig := range knownFunctions {
		out[Selector(sig)] = sig
	}
	for _, sig := range knownEvents {
		out[Topic(sig)] = sig
	}
	return out
}

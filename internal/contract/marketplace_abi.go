package contract

// TicketMarketplace escrows listed tickets and settles resales.
// Listing state is contract-owned; this layer only reads it back.
func init() {
	RegisterBuiltin(Builtin{
		Name:        TicketMarketplace,
		Description: "Secondary-market listings, purchases, and offers",
		ABI:         ticketMarketplaceABI,
	})
}

var ticketMarketplaceABI = []ABIEntry{
	// ── Write ────────────────────────────────────────────────────────────────
	{
		Name: "listTicket", Type: "function",
		Inputs: []ABIParam{
			{Name: "tokenId", Type: "uint256"},
			{Name: "price", Type: "uint256"},
		},
		StateMutability: "nonpayable",
	},
	{
		Name: "buyTicket", Type: "function",
		Inputs:          []ABIParam{{Name: "tokenId", Type: "uint256"}},
		StateMutability: "payable",
	},
	{
		Name: "makeOffer", Type: "function",
		Inputs: []ABIParam{
			{Name: "tokenId", Type: "uint256"},
			{Name: "expirationTime", Type: "uint256"},
		},
		StateMutability: "payable",
	},
	{
		Name: "cancelListing", Type: "function",
		Inputs:          []ABIParam{{Name: "tokenId", Type: "uint256"}},
		StateMutability: "nonpayable",
	},
	// ── Read ─────────────────────────────────────────────────────────────────
	{
		Name: "getActiveListing", Type: "function",
		Inputs: []ABIParam{{Name: "index", Type: "uint256"}},
		Outputs: []ABIParam{
			{Name: "listingId", Type: "uint256"},
			{Name: "tokenId", Type: "uint256"},
			{Name: "seller", Type: "address"},
			{Name: "price", Type: "uint256"},
			{Name: "listedAt", Type: "uint256"},
			{Name: "isActive", Type: "bool"},
		},
		StateMutability: "view",
	},
	{
		Name: "getActiveListingsCount", Type: "function",
		Outputs:         []ABIParam{{Name: "", Type: "uint256"}},
		StateMutability: "view",
	},
	{
		Name: "getActiveOffers", Type: "function",
		Inputs: []ABIParam{{Name: "tokenId", Type: "uint256"}},
		Outputs: []ABIParam{{
			Name: "", Type: "tuple[]",
			Components: []ABIParam{
				{Name: "buyer", Type: "address"},
				{Name: "price", Type: "uint256"},
				{Name: "expirationTime", Type: "uint256"},
				{Name: "isActive", Type: "bool"},
			},
		}},
		StateMutability: "view",
	},
	// ── Events ───────────────────────────────────────────────────────────────
	{
		Name: "TicketListed", Type: "event",
		Inputs: []ABIParam{
			{Name: "listingId", Type: "uint256", Indexed: true},
			{Name: "tokenId", Type: "uint256", Indexed: true},
			{Name: "seller", Type: "address", Indexed: true},
			{Name: "price", Type: "uint256"},
		},
	},
	{
		Name: "TicketSold", Type: "event",
		Inputs: []ABIParam{
			{Name: "tokenId", Type: "uint256", Indexed: true},
			{Name: "seller", Type: "address", Indexed: true},
			{Name: "buyer", Type: "address", Indexed: true},
			{Name: "price", Type: "uint256"},
		},
	},
	{
		Name: "OfferMade", Type: "event",
		Inputs: []ABIParam{
			{Name: "tokenId", Type: "uint256", Indexed: true},
			{Name: "buyer", Type: "address", Indexed: true},
			{Name: "price", Type: "uint256"},
			{Name: "expirationTime", Type: "uint256"},
		},
	},
}

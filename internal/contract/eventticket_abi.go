package contract

// EventTicket issues events, ticket types, and NFT tickets.
//
// Emitted identifiers:
//
//	EventCreated.eventId           → createEvent
//	TicketTypeCreated.ticketTypeId → createTicketType
//	TicketPurchased.tokenId        → purchaseTicket
func init() {
	RegisterBuiltin(Builtin{
		Name:        EventTicket,
		Description: "Event registry and NFT ticket issuance",
		ABI:         eventTicketABI,
	})
}

var eventTicketABI = []ABIEntry{
	// ── Write ────────────────────────────────────────────────────────────────
	{
		Name: "createEvent", Type: "function",
		Inputs: []ABIParam{
			{Name: "name", Type: "string"},
			{Name: "description", Type: "string"},
			{Name: "startDate", Type: "uint256"},
			{Name: "endDate", Type: "uint256"},
		},
		StateMutability: "nonpayable",
	},
	{
		Name: "createTicketType", Type: "function",
		Inputs: []ABIParam{
			{Name: "eventId", Type: "uint256"},
			{Name: "name", Type: "string"},
			{Name: "description", Type: "string"},
			{Name: "price", Type: "uint256"},
			{Name: "supply", Type: "uint256"},
		},
		StateMutability: "nonpayable",
	},
	{
		Name: "purchaseTicket", Type: "function",
		Inputs: []ABIParam{
			{Name: "ticketTypeId", Type: "uint256"},
			{Name: "tokenURI", Type: "string"},
		},
		StateMutability: "payable",
	},
	// ── Read ─────────────────────────────────────────────────────────────────
	{
		Name: "events", Type: "function",
		Inputs: []ABIParam{{Name: "eventId", Type: "uint256"}},
		Outputs: []ABIParam{
			{Name: "id", Type: "uint256"},
			{Name: "name", Type: "string"},
			{Name: "description", Type: "string"},
			{Name: "startDate", Type: "uint256"},
			{Name: "endDate", Type: "uint256"},
			{Name: "creator", Type: "address"},
			{Name: "isActive", Type: "bool"},
		},
		StateMutability: "view",
	},
	{
		Name: "ticketTypes", Type: "function",
		Inputs: []ABIParam{{Name: "ticketTypeId", Type: "uint256"}},
		Outputs: []ABIParam{
			{Name: "id", Type: "uint256"},
			{Name: "eventId", Type: "uint256"},
			{Name: "name", Type: "string"},
			{Name: "description", Type: "string"},
			{Name: "price", Type: "uint256"},
			{Name: "supply", Type: "uint256"},
			{Name: "sold", Type: "uint256"},
			{Name: "isActive", Type: "bool"},
		},
		StateMutability: "view",
	},
	{
		Name: "tickets", Type: "function",
		Inputs: []ABIParam{{Name: "tokenId", Type: "uint256"}},
		Outputs: []ABIParam{
			{Name: "eventId", Type: "uint256"},
			{Name: "ticketTypeId", Type: "uint256"},
			{Name: "owner", Type: "address"},
			{Name: "isUsed", Type: "bool"},
			{Name: "purchaseDate", Type: "uint256"},
		},
		StateMutability: "view",
	},
	{
		Name: "getEventsByCreator", Type: "function",
		Inputs:          []ABIParam{{Name: "creator", Type: "address"}},
		Outputs:         []ABIParam{{Name: "", Type: "uint256[]"}},
		StateMutability: "view",
	},
	{
		Name: "getTicketTypesByEvent", Type: "function",
		Inputs:          []ABIParam{{Name: "eventId", Type: "uint256"}},
		Outputs:         []ABIParam{{Name: "", Type: "uint256[]"}},
		StateMutability: "view",
	},
	{
		Name: "getTicketsByOwner", Type: "function",
		Inputs:          []ABIParam{{Name: "owner", Type: "address"}},
		Outputs:         []ABIParam{{Name: "", Type: "uint256[]"}},
		StateMutability: "view",
	},
	{
		Name: "tokenURI", Type: "function",
		Inputs:          []ABIParam{{Name: "tokenId", Type: "uint256"}},
		Outputs:         []ABIParam{{Name: "", Type: "string"}},
		StateMutability: "view",
	},
	// ── Events ───────────────────────────────────────────────────────────────
	{
		Name: "EventCreated", Type: "event",
		Inputs: []ABIParam{
			{Name: "eventId", Type: "uint256", Indexed: true},
			{Name: "creator", Type: "address", Indexed: true},
			{Name: "name", Type: "string"},
		},
	},
	{
		Name: "TicketTypeCreated", Type: "event",
		Inputs: []ABIParam{
			{Name: "ticketTypeId", Type: "uint256", Indexed: true},
			{Name: "eventId", Type: "uint256", Indexed: true},
			{Name: "name", Type: "string"},
		},
	},
	{
		Name: "TicketPurchased", Type: "event",
		Inputs: []ABIParam{
			{Name: "tokenId", Type: "uint256", Indexed: true},
			{Name: "ticketTypeId", Type: "uint256", Indexed: true},
			{Name: "buyer", Type: "address", Indexed: true},
		},
	},
}

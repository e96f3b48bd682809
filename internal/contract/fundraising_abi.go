package contract

// Fundraising escrows campaign donations until withdrawal.
func init() {
	RegisterBuiltin(Builtin{
		Name:        Fundraising,
		Description: "Fundraising campaigns and donations",
		ABI:         fundraisingABI,
	})
}

var fundraisingABI = []ABIEntry{
	// ── Write ────────────────────────────────────────────────────────────────
	{
		Name: "createCampaign", Type: "function",
		Inputs: []ABIParam{
			{Name: "title", Type: "string"},
			{Name: "description", Type: "string"},
			{Name: "goal", Type: "uint256"},
			{Name: "startDate", Type: "uint256"},
			{Name: "endDate", Type: "uint256"},
		},
		StateMutability: "nonpayable",
	},
	{
		Name: "donate", Type: "function",
		Inputs: []ABIParam{
			{Name: "campaignId", Type: "uint256"},
			{Name: "message", Type: "string"},
			{Name: "isAnonymous", Type: "bool"},
		},
		StateMutability: "payable",
	},
	{
		Name: "withdrawFunds", Type: "function",
		Inputs:          []ABIParam{{Name: "campaignId", Type: "uint256"}},
		StateMutability: "nonpayable",
	},
	// ── Read ─────────────────────────────────────────────────────────────────
	{
		Name: "campaigns", Type: "function",
		Inputs: []ABIParam{{Name: "campaignId", Type: "uint256"}},
		Outputs: []ABIParam{
			{Name: "id", Type: "uint256"},
			{Name: "title", Type: "string"},
			{Name: "description", Type: "string"},
			{Name: "goal", Type: "uint256"},
			{Name: "raised", Type: "uint256"},
			{Name: "startDate", Type: "uint256"},
			{Name: "endDate", Type: "uint256"},
			{Name: "creator", Type: "address"},
			{Name: "isActive", Type: "bool"},
			{Name: "fundsWithdrawn", Type: "bool"},
		},
		StateMutability: "view",
	},
	{
		Name: "getDonations", Type: "function",
		Inputs: []ABIParam{{Name: "campaignId", Type: "uint256"}},
		Outputs: []ABIParam{{
			Name: "", Type: "tuple[]",
			Components: []ABIParam{
				{Name: "donor", Type: "address"},
				{Name: "amount", Type: "uint256"},
				{Name: "timestamp", Type: "uint256"},
				{Name: "message", Type: "string"},
				{Name: "isAnonymous", Type: "bool"},
			},
		}},
		StateMutability: "view",
	},
	{
		Name: "getCampaignsByCreator", Type: "function",
		Inputs:          []ABIParam{{Name: "creator", Type: "address"}},
		Outputs:         []ABIParam{{Name: "", Type: "uint256[]"}},
		StateMutability: "view",
	},
	{
		Name: "campaignCount", Type: "function",
		Outputs:         []ABIParam{{Name: "", Type: "uint256"}},
		StateMutability: "view",
	},
	// ── Events ───────────────────────────────────────────────────────────────
	{
		Name: "CampaignCreated", Type: "event",
		Inputs: []ABIParam{
			{Name: "campaignId", Type: "uint256", Indexed: true},
			{Name: "creator", Type: "address", Indexed: true},
			{Name: "title", Type: "string"},
		},
	},
	{
		Name: "DonationReceived", Type: "event",
		Inputs: []ABIParam{
			{Name: "campaignId", Type: "uint256", Indexed: true},
			{Name: "donor", Type: "address", Indexed: true},
			{Name: "amount", Type: "uint256"},
		},
	},
}

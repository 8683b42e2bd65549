package chain

import "notifyScope/internal/model"

// Event layouts lifted from the integrated programs' anchor IDLs. Balansol's
// IDL declares no events, so its program yields no subscriptions.
var declaredEvents = map[string][]model.EventSpec{
	"balansol": nil,
	"farming_v2": {
		{Name: "ClaimEvent", Fields: []model.FieldSpec{
			{Name: "authority", Type: model.FieldPublicKey},
			{Name: "farm", Type: model.FieldPublicKey},
			{Name: "debt", Type: model.FieldPublicKey},
			{Name: "rewards", Type: model.FieldU64},
		}},
		{Name: "ConvertAllRewardsEvent", Fields: []model.FieldSpec{
			{Name: "authority", Type: model.FieldPublicKey},
			{Name: "farm", Type: model.FieldPublicKey},
		}},
		{Name: "ConvertSingleRewardEvent", Fields: []model.FieldSpec{
			{Name: "authority", Type: model.FieldPublicKey},
			{Name: "farm", Type: model.FieldPublicKey},
			{Name: "farmRewardMint", Type: model.FieldPublicKey},
			{Name: "rewardMint", Type: model.FieldPublicKey},
			{Name: "rewards", Type: model.FieldU64},
		}},
		{Name: "DepositEvent", Fields: []model.FieldSpec{
			{Name: "authority", Type: model.FieldPublicKey},
			{Name: "farm", Type: model.FieldPublicKey},
			{Name: "debt", Type: model.FieldPublicKey},
			{Name: "inAmount", Type: model.FieldU64},
			{Name: "outAmount", Type: model.FieldU64},
		}},
		{Name: "InitializeDebtEvent", Fields: []model.FieldSpec{
			{Name: "authority", Type: model.FieldPublicKey},
			{Name: "farm", Type: model.FieldPublicKey},
			{Name: "debt", Type: model.FieldPublicKey},
		}},
		{Name: "InitializeFarmEvent", Fields: []model.FieldSpec{
			{Name: "authority", Type: model.FieldPublicKey},
			{Name: "farm", Type: model.FieldPublicKey},
			{Name: "inputMint", Type: model.FieldPublicKey},
			{Name: "startDate", Type: model.FieldI64},
			{Name: "endDate", Type: model.FieldI64},
		}},
		{Name: "LockEvent", Fields: []model.FieldSpec{
			{Name: "authority", Type: model.FieldPublicKey},
			{Name: "farm", Type: model.FieldPublicKey},
			{Name: "debt", Type: model.FieldPublicKey},
			{Name: "lockTime", Type: model.FieldI64},
		}},
		{Name: "PushFarmBoostingCollectionEvent", Fields: []model.FieldSpec{
			{Name: "authority", Type: model.FieldPublicKey},
			{Name: "farm", Type: model.FieldPublicKey},
			{Name: "collection", Type: model.FieldPublicKey},
		}},
		{Name: "PushFarmRewardMintEvent", Fields: []model.FieldSpec{
			{Name: "authority", Type: model.FieldPublicKey},
			{Name: "farm", Type: model.FieldPublicKey},
			{Name: "rewardMint", Type: model.FieldPublicKey},
		}},
		{Name: "StakeEvent", Fields: []model.FieldSpec{
			{Name: "authority", Type: model.FieldPublicKey},
			{Name: "farm", Type: model.FieldPublicKey},
			{Name: "debt", Type: model.FieldPublicKey},
			{Name: "amount", Type: model.FieldU64},
		}},
		{Name: "TransferOwnerShipEvent", Fields: []model.FieldSpec{
			{Name: "authority", Type: model.FieldPublicKey},
			{Name: "newAuthority", Type: model.FieldPublicKey},
			{Name: "farm", Type: model.FieldPublicKey},
		}},
		{Name: "UnLockEvent", Fields: []model.FieldSpec{
			{Name: "authority", Type: model.FieldPublicKey},
			{Name: "farm", Type: model.FieldPublicKey},
			{Name: "debt", Type: model.FieldPublicKey},
		}},
		{Name: "UnstakeEvent", Fields: []model.FieldSpec{
			{Name: "authority", Type: model.FieldPublicKey},
			{Name: "farm", Type: model.FieldPublicKey},
			{Name: "debt", Type: model.FieldPublicKey},
			{Name: "amount", Type: model.FieldU64},
		}},
		{Name: "WithdrawEvent", Fields: []model.FieldSpec{
			{Name: "authority", Type: model.FieldPublicKey},
			{Name: "farm", Type: model.FieldPublicKey},
			{Name: "debt", Type: model.FieldPublicKey},
			{Name: "inAmount", Type: model.FieldU64},
			{Name: "outAmount", Type: model.FieldU64},
		}},
	},
	"interdao": {
		{Name: "InitializeDAOEvent", Fields: []model.FieldSpec{
			{Name: "dao", Type: model.FieldPublicKey},
			{Name: "authority", Type: model.FieldPublicKey},
			{Name: "mint", Type: model.FieldPublicKey},
		}},
		{Name: "InitializeProposalEvent", Fields: []model.FieldSpec{
			{Name: "proposal", Type: model.FieldPublicKey},
			{Name: "dao", Type: model.FieldPublicKey},
			{Name: "caller", Type: model.FieldPublicKey},
		}},
		{Name: "VoteForEvent", Fields: []model.FieldSpec{
			{Name: "authority", Type: model.FieldPublicKey},
			{Name: "dao", Type: model.FieldPublicKey},
			{Name: "proposal", Type: model.FieldPublicKey},
			{Name: "amount", Type: model.FieldU64},
		}},
		{Name: "VoteAgainstEvent", Fields: []model.FieldSpec{
			{Name: "authority", Type: model.FieldPublicKey},
			{Name: "dao", Type: model.FieldPublicKey},
			{Name: "proposal", Type: model.FieldPublicKey},
			{Name: "amount", Type: model.FieldU64},
		}},
		{Name: "ExecuteProposalEvent", Fields: []model.FieldSpec{
			{Name: "proposal", Type: model.FieldPublicKey},
			{Name: "dao", Type: model.FieldPublicKey},
			{Name: "caller", Type: model.FieldPublicKey},
		}},
	},
}

// DeclaredEvents returns the event specs a known program declares. Unknown
// program names return nil, which disables subscriptions for that program.
func DeclaredEvents(programName string) []model.EventSpec {
	return declaredEvents[programName]
}

package rationcard

func head(name, nationalID string, age int) FamilyMember {
	return FamilyMember{ID: "head-" + nationalID, Name: name, Age: age, Relation: RelationHead, NationalID: nationalID}
}

// DemoCards returns a card for each demo directory enrolment.
func DemoCards() []Card {
	return []Card{
		{
			ID: "card-1", CardNumber: "DL01234567890123", CardType: CardBPL, NationalID: "123456789012",
			IssuedDate: "2020-01-15", ValidUntil: "2030-01-15",
			FamilyMembers: []FamilyMember{
				head("Rajesh Kumar", "123456789012", 45),
				{ID: "m-1-2", Name: "Sunita Kumar", Age: 40, Relation: "Spouse", NationalID: "123456789013"},
				{ID: "m-1-3", Name: "Amit Kumar", Age: 18, Relation: "Son", NationalID: "123456789014"},
				{ID: "m-1-4", Name: "Priya Kumar", Age: 15, Relation: "Daughter", NationalID: "123456789015"},
			},
			MonthlyQuota: Quota{Rice: 20, Wheat: 15, Sugar: 2, Kerosene: 5},
		},
		{
			ID: "card-2", CardNumber: "MH02345678901234", CardType: CardAPL, NationalID: "234567890123",
			IssuedDate: "2019-06-10", ValidUntil: "2029-06-10",
			FamilyMembers: []FamilyMember{
				head("Priya Sharma", "234567890123", 38),
				{ID: "m-2-2", Name: "Rohit Sharma", Age: 41, Relation: "Spouse", NationalID: "234567890124"},
			},
			MonthlyQuota: Quota{Rice: 10, Wheat: 10, Sugar: 1, Kerosene: 2},
		},
		{
			ID: "card-3", CardNumber: "KA03456789012345", CardType: CardAAY, NationalID: "345678901234",
			IssuedDate: "2021-03-01", ValidUntil: "2031-03-01",
			FamilyMembers: []FamilyMember{
				head("Amit Singh", "345678901234", 52),
			},
			MonthlyQuota: Quota{Rice: 35, Wheat: 0, Sugar: 1, Kerosene: 3},
		},
		{
			ID: "card-4", CardNumber: "TN04567890123456", CardType: CardBPL, NationalID: "456789012345",
			IssuedDate: "2018-11-20", ValidUntil: "2028-11-20",
			FamilyMembers: []FamilyMember{
				head("Sunita Devi", "456789012345", 60),
			},
			MonthlyQuota: Quota{Rice: 15, Wheat: 10, Sugar: 1, Kerosene: 4},
		},
		{
			ID: "card-5", CardNumber: "MH05678901234567", CardType: CardAPL, NationalID: "444452518437",
			IssuedDate: "2022-08-05", ValidUntil: "2032-08-05",
			FamilyMembers: []FamilyMember{
				head("Vikram Patel", "444452518437", 34),
			},
			MonthlyQuota: Quota{Rice: 10, Wheat: 10, Sugar: 1, Kerosene: 0},
		},
	}
}

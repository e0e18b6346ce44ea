package schema

func nonEmptyString(name string) Field {
	return Field{Name: name, Kind: String, Required: true, NotEmpty: true}
}

func stringList(name string, notEmpty bool) Field {
	return Field{
		Name:     name,
		Kind:     Array,
		Required: true,
		NotEmpty: notEmpty,
		Elem:     &Field{Kind: String, NotEmpty: true},
	}
}

// maxStoredName is the column width of recipe titles and ingredient names.
const maxStoredName = 255

// RecipeDraft is a generated recipe before it is stored.
var RecipeDraft = Shape{
	Name: "recipe",
	Fields: []Field{
		{Name: "title", Kind: String, Required: true, NotEmpty: true, MaxLen: maxStoredName},
		nonEmptyString("description"),
		{Name: "cookingTime", Kind: Integer, Required: true, Min: Float(0)},
		{Name: "servings", Kind: Integer, Required: true, Min: Float(1)},
		{
			Name:     "ingredients",
			Kind:     Array,
			Required: true,
			NotEmpty: true,
			Elem:     &Field{Kind: String, NotEmpty: true, MaxLen: maxStoredName},
		},
		stringList("instructions", true),
	},
}

// SideDishes is {sideDishes: [string]}.
var SideDishes = Shape{
	Name:   "sideDishes",
	Fields: []Field{stringList("sideDishes", false)},
}

// ShoppingList is {listCourse: [string]}.
var ShoppingList = Shape{
	Name:   "listCourse",
	Fields: []Field{stringList("listCourse", false)},
}

// RecipeNames is {recipes: [string]}, used for seasonal and similar suggestions.
var RecipeNames = Shape{
	Name:   "recipes",
	Fields: []Field{stringList("recipes", false)},
}

// RankedResults is {results: [{title, description, calories?}]}.
var RankedResults = Shape{
	Name: "results",
	Fields: []Field{{
		Name:     "results",
		Kind:     Array,
		Required: true,
		Elem: &Field{Kind: Object, Fields: []Field{
			nonEmptyString("title"),
			nonEmptyString("description"),
			{Name: "calories", Kind: Number, Min: Float(0)},
		}},
	}},
}

// Rating is a user vote body: {rating: 0..5, comment?}.
var Rating = Shape{
	Name: "rating",
	Fields: []Field{
		{Name: "rating", Kind: Number, Required: true, Min: Float(0), Max: Float(5)},
		{Name: "comment", Kind: String},
	},
}

package service

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pageza/cuistot/backend/internal/types"
)

const (
	// SearchResultCount is the number of ranked results asked of the provider.
	SearchResultCount = 10
	// SuggestionCount is the number of seasonal or similar recipe names asked.
	SuggestionCount = 5

	persona = "Tu es un chef cuisinier étoilé, réputé pour tes talents culinaires du monde entier."
)

var frenchMonths = [...]string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

// Prompter builds the provider prompts. Language selects the answer language
// and now supplies the month used for seasonal bias.
type Prompter struct {
	language string
	now      func() time.Time
}

// NewPrompter returns a Prompter answering in language, French when empty
func NewPrompter(language string, now func() time.Time) *Prompter {
	if now == nil {
		now = time.Now
	}
	return &Prompter{language: language, now: now}
}

func (p *Prompter) languageDirective() string {
	if p.language == "" || strings.EqualFold(p.language, "français") || strings.EqualFold(p.language, "fr") {
		return "Réponds en français dès que possible."
	}
	return fmt.Sprintf("Réponds en %s dès que possible.", p.language)
}

func (p *Prompter) season() string {
	m := p.now().Month()
	return fmt.Sprintf("Nous sommes au %dème mois de l'année (%s).", int(m), frenchMonths[m-1])
}

// constraints renders the advisory user block, or nothing for anonymous requests.
func constraints(uc *types.UserContext) string {
	if !uc.HasConstraints() {
		return ""
	}
	list := func(values []string) string {
		if len(values) == 0 {
			return "aucune"
		}
		return strings.Join(values, ", ")
	}
	return fmt.Sprintf(`
L'utilisateur (indications à respecter autant que possible) :
- est allergique à : $$$%s$$$ ;
- suit le régime : $$$%s$$$ ;
- a les préférences : $$$%s$$$ ;
`, list(uc.Allergies), list(uc.Diets), list(uc.Preferences))
}

// Recipe asks for the full recipe named name.
func (p *Prompter) Recipe(name string) string {
	return fmt.Sprintf(`%s
L'utilisateur demande la recette suivante : $$%s$$.

Génère la recette demandée par l'utilisateur.
%s

Schéma de réponse :
{
	"title": "Nom de la recette",
	"description": "Une description",
	"cookingTime": 0,
	"servings": 0,
	"ingredients": ["ingrédient 1", "ingrédient 2"],
	"instructions": ["étape 1", "étape 2"]
}
cookingTime est un nombre entier de minutes et servings un nombre entier de portions.
`, persona, name, p.languageDirective())
}

// Search asks the provider to generate candidates for query.
func (p *Prompter) Search(query string, uc *types.UserContext) string {
	return fmt.Sprintf(`%s
L'utilisateur recherche des recettes avec le mot-clé suivant : $$%s$$.

Génère des recettes qui correspondent à la recherche de l'utilisateur,
puis trie-les par pertinence par rapport à sa recherche.
%s Mets en avant les recettes qui utilisent des ingrédients de saison.
Tous les noms doivent être en français dès que possible.
%s
%d éléments sont attendus.

Schéma de réponse :
{
	"results": [{"title": "Nom de la recette", "description": "Une description"}]
}
`, persona, query, p.season(), constraints(uc), SearchResultCount)
}

// Rank asks the provider to filter and order stored candidates for query.
func (p *Prompter) Rank(query string, candidates []types.RankedCandidate, uc *types.UserContext) string {
	list, _ := json.Marshal(candidates)
	return fmt.Sprintf(`%s
L'utilisateur recherche des recettes avec le mot-clé suivant : $$%s$$.

Voici les recettes disponibles :
%s

Sélectionne uniquement parmi ces recettes celles qui correspondent à la recherche
et trie-les par pertinence. Recopie chaque titre et chaque description exactement,
sans les modifier ni en inventer de nouveaux.
%s Mets en avant les recettes qui utilisent des ingrédients de saison.
%s
Au plus %d éléments sont attendus.

Schéma de réponse :
{
	"results": [{"title": "Titre recopié", "description": "Description recopiée"}]
}
`, persona, query, list, p.season(), constraints(uc), SearchResultCount)
}

// Calories asks for recipes whose calories per serving lie in [minCal, maxCal].
func (p *Prompter) Calories(minCal, maxCal int, uc *types.UserContext) string {
	return fmt.Sprintf(`%s
Génère des recettes qui ont entre $$%d$$ et $$%d$$ calories par portion.
Trie-les par pertinence.
%s Mets en avant les recettes qui utilisent des ingrédients de saison.
Tous les noms doivent être en français dès que possible.
%s
%d éléments sont attendus.

Schéma de réponse :
{
	"results": [{"title": "Nom de la recette", "description": "Une description", "calories": 0}]
}
`, persona, minCal, maxCal, p.season(), constraints(uc), SearchResultCount)
}

// SideDishes asks for what to serve with the named recipe.
func (p *Prompter) SideDishes(name string) string {
	return fmt.Sprintf(`%s
L'utilisateur demande les accompagnements possibles pour la recette suivante : $$%s$$.

Génère les accompagnements possibles pour cette recette, que ce soit des vins,
des desserts, des fromages, etc.
%s

Schéma de réponse :
{
	"sideDishes": ["accompagnement 1", "accompagnement 2"]
}
`, persona, name, p.languageDirective())
}

// ShoppingList asks for a shopping list built from the stored ingredient names.
func (p *Prompter) ShoppingList(title string, ingredients []string) string {
	return fmt.Sprintf(`Je veux une liste de courses pour $$%s$$.
Base-toi sur les ingrédients de la recette qui sont les suivants : %s
et ajoute à la liste les éléments manquants, tels que le sel, le poivre, etc.,
ainsi que les ustensiles de cuisine.
%s

Schéma de réponse :
{
	"listCourse": ["Élément à acheter", "..."]
}
`, title, strings.Join(ingredients, ", "), p.languageDirective())
}

// Seasonal asks for recipes suited to the current month.
func (p *Prompter) Seasonal() string {
	return fmt.Sprintf(`%s
Quelles sont les meilleures recommandations de recettes de saison (qui respectent
les ingrédients de saison) pour cette période de l'année ?
%s

Schéma de réponse (%d éléments) :
{
	"recipes": ["Nom de la recette", "..."]
}
`, p.season(), p.languageDirective(), SuggestionCount)
}

// Similar asks for recipes close to title.
func (p *Prompter) Similar(title string) string {
	return fmt.Sprintf(`%s
Je veux des recettes similaires à $$%s$$.
Les recettes doivent utiliser des ingrédients de saison.
Il doit absolument y avoir %d éléments. S'il n'y en a pas assez, propose de
nouvelles recettes qui pourraient intéresser l'utilisateur.
Tous les noms doivent être en français dès que possible.

Schéma de réponse (%d éléments) :
{
	"recipes": ["Nom de la recette", "..."]
}
`, p.season(), title, SuggestionCount, SuggestionCount)
}

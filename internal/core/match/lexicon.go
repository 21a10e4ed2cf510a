package match

func setOf(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

// 永遠視為可取得的基本物資（刻意保持最小）
var staples = setOf(
	"water", "tap water", "filtered water", "cold water", "warm water",
	"hot water", "boiling water", "ice water", "ice", "ice cubes",
)

// 描述性形容詞，不視為核心詞
var stopWords = setOf(
	"fresh", "organic", "free-range", "natural", "raw", "cooked", "frozen",
	"canned", "dried", "whole", "sliced", "diced", "chopped", "minced",
	"large", "small", "medium", "extra", "premium", "grade", "quality",
	"lean", "fat-free", "low-fat", "reduced", "sodium", "unsalted", "salted",
	"white", "red", "green", "yellow", "brown", "black", "blue", "purple",
	"soft", "hard", "light", "dark", "sweet", "sour", "hot", "mild",
	"flavoured", "flavored", "scented", "mixed", "blended", "instant",
	"powdered", "ground", "crushed", "fine", "coarse", "pure", "ripe",
)

// 高價值核心食材詞，部分比對時權重加倍
var coreWords = setOf(
	"chicken", "beef", "pork", "fish", "milk", "cheese", "bread", "rice",
	"pasta", "tomato", "onion", "potato", "carrot", "apple", "banana",
	"flour", "egg", "lime", "lemon", "orange", "garlic", "ginger",
)

// synonymEntry 基底詞與其同義片語
type synonymEntry struct {
	base     string
	synonyms []string
}

var synonymTable = []synonymEntry{
	// 蛋白質
	{"chicken", []string{"chicken breast", "chicken thigh", "chicken leg", "poultry", "chicken meat", "chicken fillet"}},
	{"beef", []string{"ground beef", "beef steak", "steak", "beef chuck", "beef roast", "beef mince", "minced beef"}},
	{"pork", []string{"pork chop", "pork tenderloin", "pork shoulder", "pork loin", "pork mince"}},
	{"fish", []string{"white fish", "fish fillet", "fish fillets"}},
	{"egg", []string{"eggs", "chicken egg", "chicken eggs"}},

	// 乳製品
	{"milk", []string{"whole milk", "skim milk", "2% milk", "dairy milk", "cow milk", "semi skimmed milk"}},
	{"cheese", []string{"cheddar cheese", "mozzarella cheese", "parmesan cheese", "swiss cheese"}},
	{"yogurt", []string{"greek yogurt", "plain yogurt", "natural yogurt", "yoghurt"}},
	{"butter", []string{"unsalted butter", "salted butter", "dairy butter"}},
	{"cream", []string{"heavy cream", "whipping cream", "double cream", "cooking cream"}},

	// 油脂
	{"olive oil", []string{"extra virgin olive oil", "virgin olive oil", "light olive oil"}},
	{"vegetable oil", []string{"canola oil", "rapeseed oil", "sunflower oil", "corn oil", "soybean oil"}},
	{"coconut oil", []string{"virgin coconut oil", "refined coconut oil"}},

	// 蔬菜
	{"tomato", []string{"tomatoes", "roma tomato", "cherry tomato", "cherry tomatoes"}},
	{"onion", []string{"onions", "yellow onion", "sweet onion", "spanish onion"}},
	{"potato", []string{"potatoes", "russet potato", "baby potatoes"}},
	{"carrot", []string{"carrots", "baby carrot", "baby carrots"}},
	{"bell pepper", []string{"bell peppers", "capsicum"}},

	// 水果
	{"apple", []string{"apples"}},
	{"banana", []string{"bananas"}},
	{"orange", []string{"oranges", "navel orange"}},
	{"lemon", []string{"lemons"}},
	{"lime", []string{"limes"}},

	// 穀物
	{"rice", []string{"jasmine rice", "basmati rice", "long grain rice"}},
	{"pasta", []string{"spaghetti", "penne", "linguine", "macaroni", "fusilli"}},
	{"bread", []string{"wheat bread", "whole grain bread", "sandwich bread"}},
	{"flour", []string{"all purpose flour", "all-purpose flour", "wheat flour", "bread flour", "plain flour"}},

	// 調味
	{"garlic", []string{"garlic cloves", "garlic clove"}},
	{"ginger", []string{"ginger root"}},
}

// foodCategory 食物分類（依序判定，第一個命中者為準）
type foodCategory struct {
	name  string
	items map[string]struct{}
}

const (
	CategoryProteins   = "proteins"
	CategoryDairy      = "dairy"
	CategoryVegetables = "vegetables"
	CategoryFruits     = "fruits"
	CategoryGrains     = "grains"
	CategorySeasonings = "condiments_seasonings"
	CategoryOilsFats   = "oils_fats"
	CategoryProcessed  = "processed_foods"
)

var foodCategories = []foodCategory{
	{CategoryProteins, setOf("chicken", "beef", "pork", "fish", "turkey", "lamb", "egg", "eggs", "tofu",
		"meat", "salmon", "tuna", "cod", "shrimp", "bacon", "ham")},
	{CategoryDairy, setOf("milk", "cheese", "yogurt", "cream", "butter", "mozzarella", "cheddar", "parmesan")},
	{CategoryVegetables, setOf("tomato", "onion", "carrot", "potato", "pepper", "lettuce", "spinach",
		"broccoli", "cauliflower", "celery", "garlic", "ginger", "mushroom")},
	{CategoryFruits, setOf("apple", "banana", "orange", "grape", "berry", "lemon", "lime",
		"strawberry", "blueberry", "raspberry", "peach", "pear")},
	{CategoryGrains, setOf("bread", "rice", "pasta", "flour", "oat", "oats", "wheat", "quinoa",
		"barley", "cereal", "noodle", "noodles", "spaghetti", "macaroni")},
	{CategorySeasonings, setOf("vinegar", "sauce", "ketchup", "mustard", "mayo", "dressing",
		"seasoning", "spice", "herb", "salt")},
	{CategoryOilsFats, setOf("oil", "margarine", "lard", "shortening")},
	{CategoryProcessed, setOf("cookies", "crackers", "chips", "snacks", "granola", "cake", "muffin")},
}

// 允許跨分類部分比對的組合
var compatibleCategories = [][2]string{
	{CategoryDairy, CategoryProteins},
	{CategorySeasonings, CategoryVegetables},
	{CategorySeasonings, CategoryProteins},
}

// avoidPattern 基底食材與不應配對的修飾詞
type avoidPattern struct {
	base  string
	avoid map[string]struct{}
}

var avoidPatterns = []avoidPattern{
	{"butter", setOf("flavored", "flavoured", "scented", "infused", "cookies", "cake", "bread", "onion", "onions", "peanut")},
	{"chocolate", setOf("chip", "chips", "cookies", "cake", "milk", "ice", "bar")},
	{"vanilla", setOf("flavored", "flavoured", "ice", "cream", "cookies", "cake")},
	{"corn", setOf("schnitzel", "chips", "flakes", "syrup", "starch", "meal", "dog", "dogs")},
	{"flour", setOf("tortilla", "tortillas", "bread", "cake", "cookies", "pasta")},
	{"cheese", setOf("crackers", "cracker", "chips", "sauce", "soup", "cake", "cream")},
	{"cream", setOf("ice", "soup", "sauce", "cheese", "cookies")},
	{"milk", setOf("chocolate", "powder", "shake", "ice", "cake", "coconut", "condensed")},
	{"oil", setOf("spray", "chips", "fried")},
	{"sugar", setOf("cookies", "cake", "candy", "syrup", "caramel")},
	{"lemon", setOf("cake", "cookies", "pie", "candy", "drops", "juice", "curd")},
	{"orange", setOf("juice", "cake", "cookies", "candy", "peel")},
}

// 複合食品指示詞：與基底食材共用詞時代表不同商品
var compoundIndicators = setOf(
	"cookies", "cookie", "cake", "muffin", "pie", "tart", "loaf",
	"chips", "crackers", "snacks", "cereal", "granola", "bar", "balls",
	"candies", "candy", "gum", "flavored", "flavoured", "scented", "infused",
	"marinated", "glazed", "coated", "stuffed", "filled", "topped", "covered",
	"wrapped", "schnitzel", "burger", "pizza", "noodles", "sauce", "soup",
	"stew", "casserole", "salad", "sandwich", "wrap", "roll", "juice", "paste",
	"powder", "stock", "broth",
)

// 油品種類與可互換組合
var oilTypes = setOf("olive", "canola", "rapeseed", "coconut", "sunflower", "corn", "sesame", "vegetable", "soybean", "peanut", "avocado")

var oilEquivalents = map[string]map[string]struct{}{
	"canola":    setOf("rapeseed", "vegetable"),
	"rapeseed":  setOf("canola", "vegetable"),
	"vegetable": setOf("canola", "rapeseed", "sunflower", "corn", "soybean"),
	"sunflower": setOf("vegetable"),
	"corn":      setOf("vegetable"),
	"soybean":   setOf("vegetable"),
}

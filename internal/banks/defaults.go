package banks

import "github.com/cleared-dev/bankrec/internal/model"

// DefaultCatalog returns the Ecuadorian banks seeded into a new database.
func DefaultCatalog() []model.Bank {
	return []model.Bank{
		{SBSCode: "001", Name: "Banco Pichincha C.A.", ShortName: "PICHINCHA", SwiftCode: "PICHECEG", Website: "https://www.pichincha.com", Phone: "1700-742-742"},
		{SBSCode: "002", Name: "Banco del Pacífico S.A.", ShortName: "PACIFICO", SwiftCode: "PACIECEG", Website: "https://www.bancodelpacifico.com", Phone: "1700-275-275"},
		{SBSCode: "003", Name: "Banco Internacional S.A.", ShortName: "INTERNACIONAL", SwiftCode: "BINIECEG", Website: "https://www.bancointernacional.com.ec", Phone: "1700-468-372"},
		{SBSCode: "005", Name: "Banco de Guayaquil S.A.", ShortName: "GUAYAQUIL", SwiftCode: "BGUAECEG", Website: "https://www.bancoguayaquil.com", Phone: "1700-426-824"},
		{SBSCode: "007", Name: "Banco Bolivariano C.A.", ShortName: "BOLIVARIANO", SwiftCode: "BBOLECEG", Website: "https://www.bolivariano.com", Phone: "1700-265-482"},
		{SBSCode: "009", Name: "Banco ProCredit S.A.", ShortName: "PROCREDIT", SwiftCode: "MFIIECEG", Website: "https://www.procredit-bg.ec", Phone: "1700-776-273"},
		{SBSCode: "011", Name: "Banco Solidario S.A.", ShortName: "SOLIDARIO", SwiftCode: "BSOLECEG", Website: "https://www.banco-solidario.com", Phone: "1700-765-432"},
		{SBSCode: "012", Name: "Banco Machala S.A.", ShortName: "MACHALA", SwiftCode: "BMACECEG", Website: "https://www.bancomachala.com", Phone: "1700-622-425"},
		{SBSCode: "013", Name: "Banco de Loja S.A.", ShortName: "LOJA", SwiftCode: "BLOJECEG", Website: "https://www.bancodeloja.fin.ec", Phone: "1700-256-563"},
		{SBSCode: "017", Name: "Banco Diners Club del Ecuador S.A.", ShortName: "DINERS", SwiftCode: "DINCECEG", Website: "https://www.dinersclub.com.ec", Phone: "1700-346-377"},
		{SBSCode: "020", Name: "Banco General Rumiñahui S.A.", ShortName: "RUMIÑAHUI", SwiftCode: "BGRUECEG", Website: "https://www.bancogrn.com", Phone: "1700-786-463"},
	}
}
